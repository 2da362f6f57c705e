package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	errorvalues "github.com/taskquest/backend/internal/error_values"
	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/pkg/entity"
)

// In-memory repository doubles. The transactional methods ignore the Querier
// because state lives in plain maps here.

type mockTxManager struct {
	beginErr error
}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(q repository.Querier) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(nil)
}

type mockUsersRepo struct {
	users map[uuid.UUID]*entity.User
	// records lock acquisitions when shared with other mocks
	trace *[]string
}

func newMockUsersRepo(users ...*entity.User) *mockUsersRepo {
	repo := &mockUsersRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (m *mockUsersRepo) Create(ctx context.Context, user *entity.User) error {
	for _, existing := range m.users {
		if existing.Name == user.Name {
			return errorvalues.ErrUserExists
		}
	}
	stored := *user
	stored.ID = uuid.New()
	stored.Level = 1
	stored.CreatedAt = time.Now()
	m.users[stored.ID] = &stored
	return nil
}

func (m *mockUsersRepo) FindByName(ctx context.Context, name string) (*entity.User, error) {
	for _, user := range m.users {
		if user.Name == name {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errorvalues.ErrUserNotFound
}

func (m *mockUsersRepo) FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error) {
	user, ok := m.users[uid]
	if !ok {
		return nil, errorvalues.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUsersRepo) Delete(ctx context.Context, uid uuid.UUID) error {
	if _, ok := m.users[uid]; !ok {
		return errorvalues.ErrUserNotFound
	}
	delete(m.users, uid)
	return nil
}

func (m *mockUsersRepo) GetProgressForUpdate(ctx context.Context, q repository.Querier, uid uuid.UUID) (*entity.User, error) {
	if m.trace != nil {
		*m.trace = append(*m.trace, "lock user")
	}
	return m.FindByID(ctx, uid)
}

func (m *mockUsersRepo) UpdateProgress(ctx context.Context, q repository.Querier, uid uuid.UUID, available, total, level, xp int) error {
	user, ok := m.users[uid]
	if !ok {
		return errorvalues.ErrUserNotFound
	}
	user.AvailablePoints = available
	user.TotalPoints = total
	user.Level = level
	user.XP = xp
	return nil
}

type mockTasksRepo struct {
	tasks     map[uuid.UUID]*entity.Task
	completed int
	early     int
	team      int
	statsErr  error
}

func newMockTasksRepo(tasks ...*entity.Task) *mockTasksRepo {
	repo := &mockTasksRepo{tasks: make(map[uuid.UUID]*entity.Task)}
	for _, task := range tasks {
		repo.tasks[task.ID] = task
	}
	return repo
}

func (m *mockTasksRepo) Create(ctx context.Context, task *entity.Task) (uuid.UUID, error) {
	stored := *task
	stored.ID = uuid.New()
	stored.Status = entity.TaskStatusPending
	m.tasks[stored.ID] = &stored
	return stored.ID, nil
}

func (m *mockTasksRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, errorvalues.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *mockTasksRepo) GetByAssignee(ctx context.Context, uid uuid.UUID, status *entity.TaskStatus, limit, offset int) ([]*entity.Task, error) {
	result := make([]*entity.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		for _, assignee := range task.Assignees {
			if assignee == uid && (status == nil || task.Status == *status) {
				copied := *task
				result = append(result, &copied)
			}
		}
	}
	return result, nil
}

func (m *mockTasksRepo) GetForUpdate(ctx context.Context, q repository.Querier, id uuid.UUID) (*entity.Task, error) {
	return m.GetByID(ctx, id)
}

func (m *mockTasksRepo) SetStatus(ctx context.Context, q repository.Querier, id uuid.UUID, status entity.TaskStatus, completedAt *time.Time) error {
	task, ok := m.tasks[id]
	if !ok {
		return errorvalues.ErrTaskNotFound
	}
	task.Status = status
	task.CompletedAt = completedAt
	return nil
}

func (m *mockTasksRepo) StatsByUser(ctx context.Context, uid uuid.UUID) (int, int, int, error) {
	if m.statsErr != nil {
		return 0, 0, 0, m.statsErr
	}
	return m.completed, m.early, m.team, nil
}

type mockLedgerRepo struct {
	entries   []entity.PointLedgerEntry
	createErr error
	lastSince *time.Time
}

func (m *mockLedgerRepo) Create(ctx context.Context, q repository.Querier, entry *entity.PointLedgerEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	if entry == nil {
		return errors.New("ledger entry is nil")
	}
	stored := *entry
	stored.ID = int64(len(m.entries) + 1)
	stored.CreatedAt = time.Now()
	m.entries = append(m.entries, stored)
	return nil
}

func (m *mockLedgerRepo) GetByUser(ctx context.Context, uid uuid.UUID, limit, offset int) ([]entity.PointLedgerEntry, error) {
	result := make([]entity.PointLedgerEntry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == uid {
			result = append(result, m.entries[i])
		}
	}
	return result, nil
}

func (m *mockLedgerRepo) LastCompletionEntry(ctx context.Context, q repository.Querier, uid, taskID uuid.UUID) (*entity.PointLedgerEntry, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		entry := m.entries[i]
		if entry.UserID == uid && entry.TaskID != nil && *entry.TaskID == taskID && entry.Reason == entity.ReasonTaskCompletion {
			return &entry, nil
		}
	}
	return nil, nil
}

func (m *mockLedgerRepo) Leaderboard(ctx context.Context, since *time.Time, limit int) ([]entity.LeaderboardRow, error) {
	m.lastSince = since
	return []entity.LeaderboardRow{}, nil
}

func (m *mockLedgerRepo) lastEntry() *entity.PointLedgerEntry {
	if len(m.entries) == 0 {
		return nil
	}
	return &m.entries[len(m.entries)-1]
}

type mockStreaksRepo struct {
	streaks map[uuid.UUID]*entity.LoginStreak
	trace   *[]string
}

func newMockStreaksRepo() *mockStreaksRepo {
	return &mockStreaksRepo{streaks: make(map[uuid.UUID]*entity.LoginStreak)}
}

func (m *mockStreaksRepo) Get(ctx context.Context, uid uuid.UUID) (*entity.LoginStreak, error) {
	streak, ok := m.streaks[uid]
	if !ok {
		return &entity.LoginStreak{UserID: uid}, nil
	}
	copied := *streak
	return &copied, nil
}

func (m *mockStreaksRepo) GetForUpdate(ctx context.Context, q repository.Querier, uid uuid.UUID) (*entity.LoginStreak, error) {
	if m.trace != nil {
		*m.trace = append(*m.trace, "lock streak")
	}
	return m.Get(ctx, uid)
}

func (m *mockStreaksRepo) Upsert(ctx context.Context, q repository.Querier, streak *entity.LoginStreak) error {
	copied := *streak
	m.streaks[streak.UserID] = &copied
	return nil
}

type mockBadgesRepo struct {
	catalog []*entity.Badge
	grants  map[uuid.UUID]map[uuid.UUID]time.Time
	// forced result of the next Grant call, simulating a lost insert race
	denyGrant bool
}

func newMockBadgesRepo(catalog ...*entity.Badge) *mockBadgesRepo {
	return &mockBadgesRepo{
		catalog: catalog,
		grants:  make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
}

func (m *mockBadgesRepo) GetAll(ctx context.Context) ([]*entity.Badge, error) {
	return m.catalog, nil
}

func (m *mockBadgesRepo) GrantedIDs(ctx context.Context, uid uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool)
	for id := range m.grants[uid] {
		result[id] = true
	}
	return result, nil
}

func (m *mockBadgesRepo) Grant(ctx context.Context, q repository.Querier, uid, badgeID uuid.UUID) (bool, error) {
	if m.denyGrant {
		return false, nil
	}
	if m.grants[uid] == nil {
		m.grants[uid] = make(map[uuid.UUID]time.Time)
	}
	if _, ok := m.grants[uid][badgeID]; ok {
		return false, nil
	}
	m.grants[uid][badgeID] = time.Now()
	return true, nil
}

func (m *mockBadgesRepo) GetUserBadges(ctx context.Context, uid uuid.UUID) ([]entity.UserBadge, error) {
	result := make([]entity.UserBadge, 0, len(m.grants[uid]))
	for badgeID, earnedAt := range m.grants[uid] {
		result = append(result, entity.UserBadge{UserID: uid, BadgeID: badgeID, EarnedAt: earnedAt})
	}
	return result, nil
}

type mockRewardsRepo struct {
	rewards     map[uuid.UUID]*entity.Reward
	redemptions map[uuid.UUID]*entity.Redemption
}

func newMockRewardsRepo(rewards ...*entity.Reward) *mockRewardsRepo {
	repo := &mockRewardsRepo{
		rewards:     make(map[uuid.UUID]*entity.Reward),
		redemptions: make(map[uuid.UUID]*entity.Redemption),
	}
	for _, reward := range rewards {
		repo.rewards[reward.ID] = reward
	}
	return repo
}

func (m *mockRewardsRepo) GetAll(ctx context.Context, activeOnly bool) ([]*entity.Reward, error) {
	result := make([]*entity.Reward, 0, len(m.rewards))
	for _, reward := range m.rewards {
		if !activeOnly || reward.Active {
			result = append(result, reward)
		}
	}
	return result, nil
}

func (m *mockRewardsRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Reward, error) {
	reward, ok := m.rewards[id]
	if !ok {
		return nil, errorvalues.ErrRewardNotFound
	}
	copied := *reward
	return &copied, nil
}

func (m *mockRewardsRepo) CreateRedemption(ctx context.Context, q repository.Querier, redemption *entity.Redemption) (uuid.UUID, error) {
	stored := *redemption
	stored.ID = uuid.New()
	stored.Status = entity.RedemptionPending
	stored.CreatedAt = time.Now()
	m.redemptions[stored.ID] = &stored
	return stored.ID, nil
}

func (m *mockRewardsRepo) GetRedemptionForUpdate(ctx context.Context, q repository.Querier, id uuid.UUID) (*entity.Redemption, error) {
	redemption, ok := m.redemptions[id]
	if !ok {
		return nil, errorvalues.ErrRedemptionNotFound
	}
	copied := *redemption
	return &copied, nil
}

func (m *mockRewardsRepo) ResolveRedemption(ctx context.Context, q repository.Querier, id uuid.UUID, status entity.RedemptionStatus, resolvedAt time.Time) error {
	redemption, ok := m.redemptions[id]
	if !ok {
		return errorvalues.ErrRedemptionNotFound
	}
	redemption.Status = status
	redemption.ResolvedAt = &resolvedAt
	return nil
}
