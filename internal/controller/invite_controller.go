package controller

import (
	"net/http"

	"github.com/kaimonolist/linkd/internal/service"

	"github.com/gin-gonic/gin"
)

type InviteControllerConfig struct {
	DefaultListID string
}

type InviteController struct {
	config  InviteControllerConfig
	router  *gin.RouterGroup
	invites *service.InviteService
}

func NewInviteController(config InviteControllerConfig, router *gin.RouterGroup, invites *service.InviteService) *InviteController {
	return &InviteController{
		config:  config,
		router:  router,
		invites: invites,
	}
}

func (controller *InviteController) SetupRoutes() {
	controller.router.POST("/invites", controller.createInviteHandler)
	controller.router.POST("/invites/accept", controller.acceptInviteHandler)
}

type createInviteRequest struct {
	ListID string `json:"listId"`
}

type acceptInviteRequest struct {
	InviteCode string `json:"inviteCode"`
}

func (controller *InviteController) createInviteHandler(c *gin.Context) {
	uid, ok := requireUser(c)

	if !ok {
		return
	}

	var req createInviteRequest

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

	result, err := controller.invites.CreateInvite(c.Request.Context(), uid, listID)

	if err != nil {
		handleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (controller *InviteController) acceptInviteHandler(c *gin.Context) {
	uid, ok := requireUser(c)

	if !ok {
		return
	}

	var req acceptInviteRequest

	if err := c.ShouldBindJSON(&req); err != nil || req.InviteCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  http.StatusBadRequest,
			"message": "招待コードを指定してください。",
		})
		return
	}

	result, err := controller.invites.AcceptInvite(c.Request.Context(), uid, req.InviteCode)

	if err != nil {
		handleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
