package controller

import (
	"net/http"

	"github.com/kaimonolist/linkd/internal/service"

	"github.com/gin-gonic/gin"
)

type RecoveryControllerConfig struct {
	DefaultListID string
}

type RecoveryController struct {
	config   RecoveryControllerConfig
	router   *gin.RouterGroup
	recovery *service.RecoveryService
}

func NewRecoveryController(config RecoveryControllerConfig, router *gin.RouterGroup, recovery *service.RecoveryService) *RecoveryController {
	return &RecoveryController{
		config:   config,
		router:   router,
		recovery: recovery,
	}
}

func (controller *RecoveryController) SetupRoutes() {
	controller.router.POST("/device-recovery", controller.registerHandler)
	controller.router.POST("/device-recovery/claim", controller.claimHandler)
}

type registerRecoveryRequest struct {
	ListID      string `json:"listId"`
	RecoveryKey string `json:"recoveryKey"`
}

type claimRecoveryRequest struct {
	RecoveryKey string `json:"recoveryKey"`
}

func (controller *RecoveryController) registerHandler(c *gin.Context) {
	uid, ok := requireUser(c)

	if !ok {
		return
	}

	var req registerRecoveryRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  http.StatusBadRequest,
			"message": "Bad Request",
		})
		return
	}

	listID := req.ListID
	if listID == "" {
		listID = controller.config.DefaultListID
	}

	result, err := controller.recovery.Register(c.Request.Context(), uid, listID, req.RecoveryKey)

	if err != nil {
		handleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (controller *RecoveryController) claimHandler(c *gin.Context) {
	uid, ok := requireUser(c)

	if !ok {
		return
	}

	var req claimRecoveryRequest

	if err := c.ShouldBindJSON(&req); err != nil || req.RecoveryKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  http.StatusBadRequest,
			"message": "リカバリーキーを指定してください。",
		})
		return
	}

	result, err := controller.recovery.Claim(c.Request.Context(), uid, req.RecoveryKey)

	if err != nil {
		handleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
