// @title TaskQuest API
// @description API for gamified task-management app "TaskQuest"
// @BasePath /api/v1
// @schemes http
package main

import (
	"log"

	"github.com/taskquest/backend/internal/api"
	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/internal/service"
	"github.com/taskquest/backend/pkg/cleanup"
	"github.com/taskquest/backend/pkg/config"
	jwtservice "github.com/taskquest/backend/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	defer cleanup.CleanUp()
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	conn := repository.NewPool(&dbCfg)
	txManager := repository.NewTxManager(conn)

	usersRepo := repository.NewUsersRepo(conn)
	projectsRepo := repository.NewProjectsRepo(conn)
	tasksRepo := repository.NewTasksRepo(conn)
	ledgerRepo := repository.NewLedgerRepo(conn)
	streaksRepo := repository.NewStreaksRepo(conn)
	badgesRepo := repository.NewBadgesRepo(conn)
	rewardsRepo := repository.NewRewardsRepo(conn)

	badgeService := service.NewBadgeService(badgesRepo, usersRepo, tasksRepo, streaksRepo, ledgerRepo, txManager)
	serv := api.New(&api.ServicesList{
		UserService:    service.NewUserService(usersRepo),
		ProjectService: service.NewProjectService(projectsRepo),
		TaskService:    service.NewTaskService(tasksRepo, usersRepo, ledgerRepo, badgeService, txManager),
		StreakService:  service.NewStreakService(streaksRepo, usersRepo, ledgerRepo, txManager),
		BadgeService:   badgeService,
		RewardService:  service.NewRewardService(rewardsRepo, usersRepo, ledgerRepo, txManager),
		PointsService:  service.NewPointsService(ledgerRepo),
		JwtService:     jwtservice.New(cfg.GetString("JWT_SECRET")),
	})
	err := serv.Run(cfg.GetString("API_ADDRESS"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
}
