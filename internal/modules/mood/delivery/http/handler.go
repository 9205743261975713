package http

import (
	"net/http"

	moodDto "anoa.com/moodtracker/internal/modules/mood/dto"
	moodService "anoa.com/moodtracker/internal/modules/mood/service"
	"anoa.com/moodtracker/pkg/response"
	"anoa.com/moodtracker/pkg/validator"
	"github.com/gin-gonic/gin"
)

type MoodHandler struct {
	service moodService.MoodService
}

func NewMoodHandler(service moodService.MoodService) *MoodHandler {
	return &MoodHandler{service: service}
}

func (h *MoodHandler) LogMood(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req moodDto.LogMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.LogMood(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Mood logged", "data": res})
}

func (h *MoodHandler) ListEntries(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query moodDto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	entries, err := h.service.ListEntries(c.Request.Context(), userID, query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (h *MoodHandler) GetStats(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (h *MoodHandler) SearchNotes(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query moodDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	hits, err := h.service.SearchNotes(c.Request.Context(), userID, query.Q, query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": hits})
}

// GetSearchToken hands the client a tenant token for searching its own notes directly.
func (h *MoodHandler) GetSearchToken(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	token, err := h.service.SearchToken(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
