package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong name or password")
	ErrInvalidToken     = errors.New("invalid token")

	ErrProjectNotFound = errors.New("project doesn't exist")

	ErrTaskNotFound         = errors.New("task doesn't exist")
	ErrNotAssignee          = errors.New("user is not an assignee of the task")
	ErrTaskAlreadyCompleted = errors.New("task is already completed")
	ErrTaskNotCompleted     = errors.New("task is not completed")

	ErrBonusAlreadyClaimed = errors.New("login bonus already claimed today")

	ErrRewardNotFound      = errors.New("reward doesn't exist")
	ErrRewardInactive      = errors.New("reward is not available")
	ErrInsufficientBalance = errors.New("not enough available points")
	ErrRedemptionNotFound  = errors.New("redemption doesn't exist")
	ErrRedemptionResolved  = errors.New("redemption is already resolved")
	ErrNotManager          = errors.New("user is not a manager")
)
