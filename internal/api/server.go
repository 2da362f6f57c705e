package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskquest/backend/internal/service"
)

type Server struct {
	mx             *chi.Mux
	userService    service.UserServiceI
	projectService service.ProjectServiceI
	taskService    service.TaskServiceI
	streakService  service.StreakServiceI
	badgeService   service.BadgeServiceI
	rewardService  service.RewardServiceI
	pointsService  service.PointsServiceI
	jwtService     JWTServiceI
}

type ServicesList struct {
	UserService    service.UserServiceI
	ProjectService service.ProjectServiceI
	TaskService    service.TaskServiceI
	StreakService  service.StreakServiceI
	BadgeService   service.BadgeServiceI
	RewardService  service.RewardServiceI
	PointsService  service.PointsServiceI
	JwtService     JWTServiceI
}

func New(servicesOptions *ServicesList) *Server {
	return &Server{
		mx:             chi.NewMux(),
		userService:    servicesOptions.UserService,
		projectService: servicesOptions.ProjectService,
		taskService:    servicesOptions.TaskService,
		streakService:  servicesOptions.StreakService,
		badgeService:   servicesOptions.BadgeService,
		rewardService:  servicesOptions.RewardService,
		pointsService:  servicesOptions.PointsService,
		jwtService:     servicesOptions.JwtService,
	}
}

func (s *Server) registerRoutes() {
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Use(s.RequestIDMiddleware)
		r.Use(s.SettingUpLoggerMiddleware)
		r.Post("/register", s.Register)
		r.Post("/login", s.Login)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Use(s.LoggerExtensionMiddleware)
			r.Get("/me", s.GetProfile)
			r.Get("/me/badges", s.GetMyBadges)

			r.Post("/projects", s.CreateProject)
			r.Get("/projects", s.GetProjects)
			r.Get("/projects/{id}", s.GetProject)

			r.Post("/tasks", s.CreateTask)
			r.Get("/tasks", s.GetTasks)
			r.Get("/tasks/{id}", s.GetTask)
			r.Post("/tasks/{id}/complete", s.CompleteTask)
			r.Post("/tasks/{id}/reset", s.ResetTask)

			r.Post("/bonus/claim", s.ClaimBonus)
			r.Get("/bonus/status", s.BonusStatus)

			r.Get("/badges", s.GetBadges)
			r.Get("/points/history", s.PointsHistory)
			r.Get("/leaderboard", s.Leaderboard)

			r.Get("/rewards", s.GetRewards)
			r.Post("/rewards/{id}/redeem", s.RedeemReward)
			r.Post("/redemptions/{id}/approve", s.ApproveRedemption)
			r.Post("/redemptions/{id}/reject", s.RejectRedemption)
		})
	})
}

func (s *Server) Run(address string) error {
	s.registerRoutes()
	return http.ListenAndServe(address, s.mx)
}
