package http

import (
	"errors"
	"net/http"

	progressionDto "anoa.com/moodtracker/internal/modules/progression/dto"
	progressionService "anoa.com/moodtracker/internal/modules/progression/service"
	"anoa.com/moodtracker/pkg/apperror"
	"anoa.com/moodtracker/pkg/response"
	"anoa.com/moodtracker/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ProgressionHandler struct {
	service progressionService.ProgressionService
}

func NewProgressionHandler(service progressionService.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{service: service}
}

func (h *ProgressionHandler) OpenLedger(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	ledger, err := h.service.OpenLedger(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ledger})
}

func (h *ProgressionHandler) GetMyProgress(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stats, err := h.service.GetXPStats(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (h *ProgressionHandler) GetHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query progressionDto.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	history, err := h.service.GetXPHistory(c.Request.Context(), userID, query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": history})
}

func (h *ProgressionHandler) ClaimDailyLogin(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	writeAward(c, h.service.AwardDailyLogin(c.Request.Context(), userID))
}

func (h *ProgressionHandler) ReadArticle(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	writeAward(c, h.service.AwardArticleRead(c.Request.Context(), userID, c.Param("article_id")))
}

func (h *ProgressionHandler) CompleteGame(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req progressionDto.GameCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res := h.service.AwardGameCompletion(
		c.Request.Context(),
		userID,
		progressionService.Game(req.Game),
		progressionService.Tier(req.Tier),
	)
	writeAward(c, res)
}

// writeAward always returns the award result body. An idempotency no-op is a normal
// outcome for the client (it just skips the XP toast), so it stays 200.
func writeAward(c *gin.Context, res progressionDto.AwardResult) {
	status := http.StatusOK
	if !res.Success && !errors.Is(res.Err, apperror.ErrAlreadyCredited) {
		status = apperror.MapErrorToStatus(res.Err)
	}
	c.JSON(status, gin.H{"data": res})
}
