package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"loan-portal-api/internal/client"
	"loan-portal-api/internal/config"
	"loan-portal-api/internal/handler"
	"loan-portal-api/internal/metrics"
	"loan-portal-api/internal/middleware"
	"loan-portal-api/internal/repository"
	"loan-portal-api/internal/service"
)

// Config holds router configuration
type Config struct {
	DB            *gorm.DB
	Redis         *redis.Client
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
	JWTSecret     string
	WebhookSecret string
	BasePath      string
	FrontendURL   string
	Storage       client.StorageClient
	Email         client.EmailClient
	S3            config.S3Config
}

// Setup wires repositories, services and handlers into the HTTP surface
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(nil))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "loan-portal-api"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if cfg.DB == nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "loan-portal-api"})
			return
		}
		sqlDB, err := cfg.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "loan-portal-api"})
			return
		}
		c.JSON(200, gin.H{"status": "ready", "service": "loan-portal-api"})
	})

	// Repositories
	userRepo := repository.NewUserRepository(cfg.DB)
	tokenRepo := repository.NewTokenRepository(cfg.DB)
	loanRepo := repository.NewLoanRepository(cfg.DB)
	pipelineRepo := repository.NewPipelineRepository(cfg.DB)
	taskRepo := repository.NewTaskRepository(cfg.DB)
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB)
	clientRepo := repository.NewClientRepository(cfg.DB)
	leadRepo := repository.NewLeadRepository(cfg.DB)
	auditRepo := repository.NewAuditRepository(cfg.DB)
	uow := repository.NewUnitOfWork(cfg.DB)

	// Services
	userService := service.NewUserService(userRepo, tokenRepo, leadRepo, auditRepo, cfg.Email, cfg.JWTSecret, cfg.FrontendURL, cfg.Logger)
	workflowService := service.NewWorkflowService(loanRepo, taskRepo, uow, cfg.Metrics, cfg.Logger)
	loanService := service.NewLoanService(loanRepo, userRepo, auditRepo, cfg.Metrics, cfg.Logger)
	pipelineService := service.NewPipelineService(pipelineRepo, loanRepo, userRepo, auditRepo, cfg.Logger)
	taskService := service.NewTaskService(taskRepo, loanRepo, auditRepo, cfg.Logger)
	attachmentService := service.NewAttachmentService(attachmentRepo, taskRepo, loanRepo, cfg.Storage,
		cfg.S3.AttachmentExpiry, cfg.S3.DownloadExpiry, cfg.Logger)
	clientService := service.NewClientService(clientRepo, loanRepo, cfg.Storage, cfg.S3.DownloadExpiry, cfg.Logger)
	leadService := service.NewLeadService(leadRepo, loanRepo, pipelineRepo, cfg.Redis, cfg.Metrics, cfg.Logger)
	dashboardService := service.NewDashboardService(loanRepo, taskRepo, auditRepo, cfg.Logger)

	// Handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	loanHandler := handler.NewLoanHandler(loanService, workflowService)
	pipelineHandler := handler.NewPipelineHandler(pipelineService)
	taskHandler := handler.NewTaskHandler(taskService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	clientHandler := handler.NewClientHandler(clientService)
	leadHandler := handler.NewLeadHandler(leadService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	api := r.Group(cfg.BasePath)

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/accept-invite", authHandler.AcceptInvite)
		auth.POST("/request-password-reset", authHandler.RequestPasswordReset)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// Lead-intake webhook (external collaborator, no session)
	api.POST("/webhooks/leads", middleware.WebhookAuth(cfg.WebhookSecret), leadHandler.ProcessLead)

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.JWTSecret))
	{
		authed.GET("/dashboard", dashboardHandler.GetDashboard)
		authed.GET("/audit", dashboardHandler.GetAuditLog)

		users := authed.Group("/users")
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", userHandler.ListUsers)
			users.DELETE("/:id", userHandler.DeactivateUser)
			users.POST("/:id/external-mappings", userHandler.CreateExternalMapping)
			users.POST("/invite", userHandler.InviteUser)
		}

		loans := authed.Group("/loans")
		{
			loans.POST("", loanHandler.CreateLoan)
			loans.GET("", loanHandler.ListLoans)
			loans.POST("/import", loanHandler.ImportLoans)
			loans.GET("/:id", loanHandler.GetLoan)
			loans.PATCH("/:id", loanHandler.UpdateLoan)
			loans.POST("/:id/stage", loanHandler.ChangeStage)
			loans.PUT("/:id/pipeline-stage", pipelineHandler.AssignLoan)
			loans.GET("/:id/tasks", taskHandler.GetTasksByLoan)
			loans.POST("/:id/notes", pipelineHandler.AddNote)
			loans.GET("/:id/notes", pipelineHandler.GetNotes)
			loans.GET("/:id/documents", clientHandler.GetFolder)
			loans.POST("/:id/documents/presign", clientHandler.UploadDocument)
		}

		pipeline := authed.Group("/pipeline")
		{
			pipeline.GET("/board", pipelineHandler.GetBoard)
			pipeline.POST("/stages", pipelineHandler.CreateStage)
			pipeline.PUT("/stages/order", pipelineHandler.ReorderStages)
			pipeline.PATCH("/stages/:id", pipelineHandler.UpdateStage)
			pipeline.DELETE("/stages/:id", pipelineHandler.DeleteStage)
		}

		tasks := authed.Group("/tasks")
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/queue", taskHandler.GetMyQueue)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id/status", taskHandler.UpdateStatus)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/attachments/presign", attachmentHandler.PresignUpload)
			tasks.GET("/:id/attachments", attachmentHandler.ListByTask)
		}

		attachments := authed.Group("/attachments")
		{
			attachments.POST("/:id/finalize", attachmentHandler.Finalize)
			attachments.GET("/:id/download-url", attachmentHandler.GetDownloadURL)
		}

		authed.GET("/documents/:id/download-url", clientHandler.GetDocumentDownloadURL)
	}

	return r
}
