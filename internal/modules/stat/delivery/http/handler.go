package http

import (
	"net/http"

	statService "anoa.com/moodtracker/internal/modules/stat/service"
	"anoa.com/moodtracker/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{
		statService: statService,
	}
}

func (h *StatHandler) GetDashboard(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	dashboard, err := h.statService.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboard})
}
