package main

import (
	"context"
	"fmt"
	"os"

	redisclient "github.com/campushub/campushub-backend/internal/clients/redis"
	"github.com/campushub/campushub-backend/internal/db"
	"github.com/campushub/campushub-backend/internal/handlers"
	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/middleware"
	"github.com/campushub/campushub-backend/internal/observability"
	"github.com/campushub/campushub-backend/internal/repos"
	"github.com/campushub/campushub-backend/internal/server"
	"github.com/campushub/campushub-backend/internal/services"
	"github.com/campushub/campushub-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "campushub-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer otelShutdown(ctx)
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("AUTH_JWT_SECRET", "defaultsecret", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	sectionRepo := repos.NewSectionRepo(thePG, log)
	enrollmentRepo := repos.NewEnrollmentRepo(thePG, log)
	materialRepo := repos.NewMaterialRepo(thePG, log)
	assignmentRepo := repos.NewAssignmentRepo(thePG, log)
	submissionRepo := repos.NewSubmissionRepo(thePG, log)
	discussionRoomRepo := repos.NewDiscussionRoomRepo(thePG, log)

	// Clients
	chatStore, err := redisclient.NewChatStore(log)
	if err != nil {
		log.Error("Could not init chat store", "error", err)
		os.Exit(1)
	}
	defer chatStore.Close()

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Error("Could not init BucketService", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(log, jwtSecretKey)
	accessService := services.NewAccessService(thePG, log, courseRepo, sectionRepo, enrollmentRepo)
	enrollmentService := services.NewEnrollmentService(thePG, log, userRepo, enrollmentRepo, accessService)
	courseService := services.NewCourseService(thePG, log, userRepo, courseRepo, sectionRepo, accessService)
	calendarService := services.NewCalendarService(thePG, log, sectionRepo)
	materialService := services.NewMaterialService(thePG, log, materialRepo, accessService, bucketService)
	assignmentService := services.NewAssignmentService(thePG, log, assignmentRepo, accessService)
	submissionService := services.NewSubmissionService(thePG, log, assignmentRepo, submissionRepo, accessService, bucketService)
	discussionService := services.NewDiscussionService(thePG, log, discussionRoomRepo, accessService, chatStore)

	// Handlers
	log.Info("Setting up handlers from main...")
	courseHandler := handlers.NewCourseHandler(log, courseService)
	enrollmentHandler := handlers.NewEnrollmentHandler(log, enrollmentService)
	materialHandler := handlers.NewMaterialHandler(log, materialService)
	assignmentHandler := handlers.NewAssignmentHandler(log, assignmentService)
	submissionHandler := handlers.NewSubmissionHandler(log, submissionService)
	discussionHandler := handlers.NewDiscussionHandler(log, discussionService)
	calendarHandler := handlers.NewCalendarHandler(log, calendarService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:    authMiddleware,
		CourseHandler:     courseHandler,
		EnrollmentHandler: enrollmentHandler,
		MaterialHandler:   materialHandler,
		AssignmentHandler: assignmentHandler,
		SubmissionHandler: submissionHandler,
		DiscussionHandler: discussionHandler,
		CalendarHandler:   calendarHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
