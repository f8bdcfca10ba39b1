package controller

import (
	"net/http"

	"github.com/kaimonolist/linkd/internal/service"

	"github.com/gin-gonic/gin"
)

type LinkControllerConfig struct {
	DefaultListID string
}

type LinkController struct {
	config LinkControllerConfig
	router *gin.RouterGroup
	links  *service.LinkService
}

func NewLinkController(config LinkControllerConfig, router *gin.RouterGroup, links *service.LinkService) *LinkController {
	return &LinkController{
		config: config,
		router: router,
		links:  links,
	}
}

func (controller *LinkController) SetupRoutes() {
	controller.router.POST("/link-code", controller.createLinkCodeHandler)
}

type createLinkCodeRequest struct {
	ListID string `json:"listId"`
}

func (controller *LinkController) createLinkCodeHandler(c *gin.Context) {
	uid, ok := requireUser(c)

	if !ok {
		return
	}

	var req createLinkCodeRequest

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

	result, err := controller.links.CreateLinkCode(c.Request.Context(), uid, listID)

	if err != nil {
		handleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
