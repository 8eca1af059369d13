package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/campushub/campushub-backend/internal/handlers"
	"github.com/campushub/campushub-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware    *middleware.AuthMiddleware
	CourseHandler     *handlers.CourseHandler
	EnrollmentHandler *handlers.EnrollmentHandler
	MaterialHandler   *handlers.MaterialHandler
	AssignmentHandler *handlers.AssignmentHandler
	SubmissionHandler *handlers.SubmissionHandler
	DiscussionHandler *handlers.DiscussionHandler
	CalendarHandler   *handlers.CalendarHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("campushub-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Courses (admin surface plus owner reads)
	api.POST("/courses", cfg.CourseHandler.CreateCourse)
	api.GET("/courses/:courseID", cfg.CourseHandler.GetCourse)
	api.POST("/courses/:courseID/teacher", cfg.CourseHandler.AssignCourseTeacher)
	api.POST("/courses/:courseID/sections", cfg.CourseHandler.CreateSection)
	api.GET("/courses/:courseID/sections", cfg.CourseHandler.ListCourseSections)

	// Sections
	api.GET("/sections/mine", cfg.CourseHandler.ListOwnSections)
	api.GET("/sections/:sectionID", cfg.CourseHandler.GetSection)
	api.POST("/sections/:sectionID/teacher", cfg.CourseHandler.DelegateSectionTeacher)

	// Enrollment
	api.POST("/sections/:sectionID/enrollments", cfg.EnrollmentHandler.Enroll)
	api.DELETE("/sections/:sectionID/enrollments/:studentID", cfg.EnrollmentHandler.Unenroll)

	// Materials
	api.GET("/sections/:sectionID/materials", cfg.MaterialHandler.List)
	api.POST("/sections/:sectionID/materials", cfg.MaterialHandler.Upload)
	api.GET("/materials/:materialID", cfg.MaterialHandler.Get)
	api.DELETE("/materials/:materialID", cfg.MaterialHandler.Delete)

	// Assignments
	api.GET("/sections/:sectionID/assignments", cfg.AssignmentHandler.List)
	api.POST("/sections/:sectionID/assignments", cfg.AssignmentHandler.Create)
	api.GET("/assignments/:assignmentID", cfg.AssignmentHandler.Get)
	api.DELETE("/assignments/:assignmentID", cfg.AssignmentHandler.Delete)

	// Submissions
	api.POST("/assignments/:assignmentID/submissions", cfg.SubmissionHandler.Submit)
	api.GET("/assignments/:assignmentID/submissions", cfg.SubmissionHandler.ListForAssignment)
	api.GET("/assignments/:assignmentID/submissions/mine", cfg.SubmissionHandler.GetMine)
	api.GET("/submissions/:submissionID", cfg.SubmissionHandler.Get)
	api.POST("/submissions/:submissionID/grade", cfg.SubmissionHandler.Grade)

	// Discussion
	api.POST("/sections/:sectionID/chat/room", cfg.DiscussionHandler.OpenRoom)
	api.GET("/sections/:sectionID/chat/messages", cfg.DiscussionHandler.ListMessages)
	api.POST("/sections/:sectionID/chat/messages", cfg.DiscussionHandler.PostMessage)

	// Calendar
	api.GET("/calendar/sections", cfg.CalendarHandler.ListSections)

	return router
}
