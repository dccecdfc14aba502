package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SAP-F-2025/guardian-service/internal/config"
	"github.com/SAP-F-2025/guardian-service/internal/models"
	"github.com/SAP-F-2025/guardian-service/internal/services"
	"github.com/SAP-F-2025/guardian-service/internal/utils"
	"github.com/SAP-F-2025/guardian-service/internal/validator"
)

type HandlerManager struct {
	parentHandler  *ParentHandler
	familyHandler  *FamilyHandler
	studentHandler *StudentHandler
	classHandler   *ClassHandler
	authMiddleware *CasdoorAuthMiddleware
	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
) *HandlerManager {
	return &HandlerManager{
		parentHandler:  NewParentHandler(serviceManager.Parent(), validator, logger),
		familyHandler:  NewFamilyHandler(serviceManager.Link(), serviceManager.Search(), logger),
		studentHandler: NewStudentHandler(serviceManager.Search(), serviceManager.ImportExport(), logger),
		classHandler:   NewClassHandler(serviceManager.Class(), logger),
		authMiddleware: NewCasdoorAuthMiddleware(casdoorConfig),
		serviceManager: serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	// Registration flow runs before the parent has an account
	v1.POST("/parents", hm.parentHandler.CreateParent)
	v1.POST("/students/find", hm.studentHandler.FindStudent)

	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Parent records - staff only
		authed.GET("/parents", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.parentHandler.ListParents)
		authed.GET("/parents/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.parentHandler.GetParent)

		// Roster and directory
		students := authed.Group("/students")
		{
			students.GET("/search", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.studentHandler.SearchStudents)
			students.POST("/import", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.studentHandler.ImportRoster)
			students.GET("/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.studentHandler.ExportRoster)
		}

		authed.GET("/teachers", hm.studentHandler.ListTeachers)

		// The acting parent's family
		me := authed.Group("/me", hm.authMiddleware.RequireRoleMiddleware(models.RoleParent))
		{
			me.GET("/children", hm.familyHandler.GetChildren)
			me.POST("/children", hm.familyHandler.LinkChild)
			me.POST("/children/search", hm.familyHandler.SearchChild)
			me.PUT("/children/:id", hm.familyHandler.UpdateChild)
			me.DELETE("/children/:id", hm.familyHandler.UnlinkChild)
		}

		// Class management
		classes := authed.Group("/classes")
		{
			classes.GET("", hm.classHandler.ListClasses)
			classes.GET("/:id", hm.classHandler.GetClass)
			classes.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.classHandler.CreateClass)
			classes.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.classHandler.UpdateClass)
			classes.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.classHandler.DeleteClass)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "guardian-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
