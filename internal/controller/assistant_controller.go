package controller

import (
	"net/http"
	"strings"

	"github.com/kaimonolist/linkd/internal/service"

	"github.com/gin-gonic/gin"
)

type AssistantController struct {
	router *gin.RouterGroup
	lists  *service.ListService
}

func NewAssistantController(router *gin.RouterGroup, lists *service.ListService) *AssistantController {
	return &AssistantController{
		router: router,
		lists:  lists,
	}
}

func (controller *AssistantController) SetupRoutes() {
	controller.router.POST("/items", controller.addItemHandler)
}

type addItemRequest struct {
	Name string `json:"name"`
}

func (controller *AssistantController) addItemHandler(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")

	if !found || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  http.StatusUnauthorized,
			"message": "Unauthorized",
		})
		return
	}

	payload := service.DecodeAccessToken(token)

	if payload == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  http.StatusUnauthorized,
			"message": "Unauthorized",
		})
		return
	}

	var req addItemRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  http.StatusBadRequest,
			"message": "Bad Request",
		})
		return
	}

	item, err := controller.lists.AddItem(payload.ListID, payload.UID, req.Name)

	if err != nil {
		handleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     item.ID,
		"name":   item.Name,
		"source": item.Source,
	})
}
