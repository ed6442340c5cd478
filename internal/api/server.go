package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"student-activity-api/docs"
	v1 "student-activity-api/internal/api/handler/v1"
	"student-activity-api/internal/api/middleware"
	"student-activity-api/internal/config"
	"student-activity-api/internal/repository"
	"student-activity-api/internal/repository/dao"
	"student-activity-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	notifier := service.NewLogNotifier()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db, notifier)
	activityHandler := s.initActivityHandler(db, notifier)
	participationHandler := s.initParticipationHandler(db, notifier)
	complaintHandler := s.initComplaintHandler(db, notifier)
	s.MountHandlers(authHandler, userHandler, activityHandler, participationHandler, complaintHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB, notifier service.NotificationDispatcher) *v1.UserHandler {
	repo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewUserService(repo)
	participationRepo := repository.NewParticipationRepository(dao.NewParticipationDAO(db))
	activityRepo := repository.NewActivityRepository(dao.NewActivityDAO(db))
	pointsSvc := service.NewParticipationService(participationRepo, activityRepo, notifier)
	handler := v1.NewUserHandler(svc, pointsSvc)

	return handler
}

func (s *Server) initActivityHandler(db *gorm.DB, notifier service.NotificationDispatcher) *v1.ActivityHandler {
	activityRepo := repository.NewActivityRepository(dao.NewActivityDAO(db))
	participationRepo := repository.NewParticipationRepository(dao.NewParticipationDAO(db))
	svc := service.NewActivityService(activityRepo)
	pSvc := service.NewParticipationService(participationRepo, activityRepo, notifier)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewActivityHandler(svc, pSvc, uSvc)

	return handler
}

func (s *Server) initParticipationHandler(db *gorm.DB, notifier service.NotificationDispatcher) *v1.ParticipationHandler {
	activityRepo := repository.NewActivityRepository(dao.NewActivityDAO(db))
	participationRepo := repository.NewParticipationRepository(dao.NewParticipationDAO(db))
	svc := service.NewParticipationService(participationRepo, activityRepo, notifier)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewParticipationHandler(svc, uSvc)

	return handler
}

func (s *Server) initComplaintHandler(db *gorm.DB, notifier service.NotificationDispatcher) *v1.ComplaintHandler {
	complaintRepo := repository.NewComplaintRepository(dao.NewComplaintDAO(db))
	participationRepo := repository.NewParticipationRepository(dao.NewParticipationDAO(db))
	activityRepo := repository.NewActivityRepository(dao.NewActivityDAO(db))
	svc := service.NewComplaintService(complaintRepo, participationRepo, activityRepo, notifier)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewComplaintHandler(svc, uSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, userHandler *v1.UserHandler, activityHandler *v1.ActivityHandler, participationHandler *v1.ParticipationHandler, complaintHandler *v1.ComplaintHandler) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.GET("/users/:userID", userHandler.HandleGetUser)
		authenticated.GET("/users/:userID/points", userHandler.HandleGetUserPoints)

		authenticated.GET("/activities", activityHandler.HandleListActivities)
		authenticated.POST("/activities", activityHandler.HandleCreateActivity)
		authenticated.GET("/activities/:activityID", activityHandler.HandleGetActivity)
		authenticated.POST("/activities/:activityID/publish", activityHandler.HandlePublishActivity)
		authenticated.POST("/activities/:activityID/complete", activityHandler.HandleCompleteActivity)
		authenticated.GET("/activities/:activityID/eligibility", activityHandler.HandleCheckEligibility)
		authenticated.GET("/activities/:activityID/alternatives", activityHandler.HandleListAlternatives)
		authenticated.GET("/activities/:activityID/registrations", participationHandler.HandleListRegistrations)
		authenticated.PATCH("/activities/:activityID/registrations", participationHandler.HandleBulkReview)
		authenticated.PATCH("/activities/:activityID/attendance", participationHandler.HandleConfirmAttendance)

		authenticated.GET("/participations", participationHandler.HandleListMyParticipations)
		authenticated.POST("/participations", participationHandler.HandleCreateParticipation)
		authenticated.POST("/participations/:participationID/submit", participationHandler.HandleSubmitParticipation)
		authenticated.DELETE("/participations/:participationID", participationHandler.HandleCancelParticipation)

		authenticated.GET("/complaints", complaintHandler.HandleListComplaints)
		authenticated.POST("/complaints", complaintHandler.HandleCreateComplaint)
		authenticated.PATCH("/complaints/:complaintID", complaintHandler.HandleResolveComplaint)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Student Activity API"
	docs.SwaggerInfo.Description = "Activity participation and training point API."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
