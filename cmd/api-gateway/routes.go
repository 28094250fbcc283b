package main

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/innovex/ideahub-api/internal/handler"
	"github.com/innovex/ideahub-api/internal/middleware"
	"github.com/innovex/ideahub-api/internal/models"
	"github.com/innovex/ideahub-api/internal/service"
	"github.com/innovex/ideahub-api/pkg/config"
)

type routeDeps struct {
	auth          *service.AuthService
	staff         *handler.StaffHandler
	departments   *handler.DepartmentHandler
	categories    *handler.CategoryHandler
	academics     *handler.AcademicHandler
	ideas         *handler.IdeaHandler
	comments      *handler.CommentHandler
	votes         *handler.VoteHandler
	reports       *handler.ReportHandler
	announcements *handler.AnnouncementHandler
	stats         *handler.StatsHandler
	exports       *handler.ExportHandler
	metrics       *handler.MetricsHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, deps routeDeps) {
	r.GET("/health", deps.metrics.Health)
	r.GET("/ready", deps.metrics.Health)
	r.GET("/metrics", deps.metrics.Prometheus)

	prefix := strings.TrimRight(cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	authHandler := handler.NewAuthHandler(deps.auth)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	// Signed token downloads carry their own authorization.
	api.GET("/exports/download/:token", deps.exports.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.auth))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/auth/me", authHandler.Me)

	admin := middleware.RequireRoles(models.RoleAdmin)
	manager := middleware.RequireRoles(models.RoleQAManager, models.RoleAdmin)
	moderator := middleware.RequireModerator()

	staff := authed.Group("/staff")
	{
		staff.GET("", moderator, deps.staff.List)
		staff.GET("/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleQAManager), "SELF"), deps.staff.Get)
		staff.POST("", admin, deps.staff.Create)
		staff.PUT("/:id", admin, deps.staff.Update)
		staff.DELETE("/:id", admin, deps.staff.Delete)
	}

	departments := authed.Group("/departments")
	{
		departments.GET("", deps.departments.List)
		departments.GET("/:id", deps.departments.Get)
		departments.POST("", admin, deps.departments.Create)
		departments.PUT("/:id", admin, deps.departments.Update)
		departments.DELETE("/:id", admin, deps.departments.Delete)
	}

	categories := authed.Group("/categories")
	{
		categories.GET("", deps.categories.List)
		categories.GET("/:id", deps.categories.Get)
		categories.POST("", manager, deps.categories.Create)
		categories.PUT("/:id", manager, deps.categories.Update)
		categories.DELETE("/:id", manager, deps.categories.Delete)
	}

	academics := authed.Group("/academic-years")
	{
		academics.GET("", deps.academics.List)
		academics.GET("/:id", deps.academics.Get)
		academics.POST("", manager, deps.academics.Create)
		academics.PUT("/:id", manager, deps.academics.Update)
		academics.DELETE("/:id", manager, deps.academics.Delete)
	}

	authed.GET("/semesters/current", deps.academics.CurrentSemester)
	authed.GET("/semesters/:id", deps.academics.GetSemester)

	ideas := authed.Group("/ideas")
	{
		ideas.GET("", deps.ideas.List)
		ideas.GET("/:id", deps.ideas.Get)
		ideas.POST("", deps.ideas.Create)
		ideas.PUT("/:id", deps.ideas.Update)
		ideas.DELETE("/:id", deps.ideas.Delete)
		ideas.POST("/:id/documents", deps.ideas.AddDocument)

		ideas.GET("/:id/comments", deps.comments.List)
		ideas.POST("/:id/comments", deps.comments.Create)

		ideas.GET("/:id/votes", deps.votes.Status)
		ideas.PUT("/:id/votes", deps.votes.Cast)
		ideas.DELETE("/:id/votes", deps.votes.Retract)

		ideas.POST("/:id/reports", deps.reports.Create)
	}

	authed.PUT("/comments/:commentId", deps.comments.Update)
	authed.DELETE("/comments/:commentId", deps.comments.Delete)

	reports := authed.Group("/reports")
	reports.Use(moderator)
	{
		reports.GET("", deps.reports.List)
		reports.GET("/:id", deps.reports.Get)
		reports.DELETE("/:id", deps.reports.Delete)
		reports.POST("/:id/approve", deps.reports.Approve)
		reports.POST("/:id/reject", deps.reports.Reject)
		reports.POST("/:id/hide", deps.reports.Hide)
		reports.POST("/:id/unhide", deps.reports.Unhide)
	}

	announcements := authed.Group("/announcements")
	{
		announcements.GET("", deps.announcements.List)
		announcements.GET("/:id", deps.announcements.Get)
		announcements.POST("", moderator, deps.announcements.Create)
		announcements.DELETE("/:id", moderator, deps.announcements.Delete)
	}

	stats := authed.Group("/stats")
	stats.Use(moderator)
	{
		stats.GET("", deps.stats.Report)
		stats.GET("/pdf", deps.stats.ReportPDF)
	}

	exports := authed.Group("/exports")
	exports.Use(manager)
	{
		exports.POST("/academic-years/:academicYearId/workbook", deps.exports.AcademicWorkbook)
		exports.POST("/academic-years/:academicYearId/archive", deps.exports.AcademicArchive)
		exports.POST("/semesters/:semesterId/workbook", deps.exports.Workbook)
		exports.POST("/semesters/:semesterId/archive", deps.exports.Archive)
	}
}
