package controller

import (
	"crypto/subtle"
	"net/http"

	"github.com/kaimonolist/linkd/internal/service"

	"github.com/gin-gonic/gin"
)

type MaintenanceControllerConfig struct {
	MaintenanceSecret string
}

type MaintenanceController struct {
	config  MaintenanceControllerConfig
	router  *gin.RouterGroup
	cleanup *service.CleanupService
}

func NewMaintenanceController(config MaintenanceControllerConfig, router *gin.RouterGroup, cleanup *service.CleanupService) *MaintenanceController {
	return &MaintenanceController{
		config:  config,
		router:  router,
		cleanup: cleanup,
	}
}

func (controller *MaintenanceController) SetupRoutes() {
	controller.router.POST("/maintenance/cleanup", controller.cleanupHandler)
}

func (controller *MaintenanceController) cleanupHandler(c *gin.Context) {
	token := c.GetHeader("X-Maintenance-Token")

	if controller.config.MaintenanceSecret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(controller.config.MaintenanceSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  http.StatusUnauthorized,
			"message": "Unauthorized",
		})
		return
	}

	summary, err := controller.cleanup.PerformCleanup(c.Request.Context())

	if err != nil {
		handleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
