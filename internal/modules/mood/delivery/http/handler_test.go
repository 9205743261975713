package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anoa.com/moodtracker/internal/entity"
	"anoa.com/moodtracker/internal/modules/mood/analytics"
	moodDto "anoa.com/moodtracker/internal/modules/mood/dto"
	moodRepo "anoa.com/moodtracker/internal/modules/mood/repository"
	moodService "anoa.com/moodtracker/internal/modules/mood/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&entity.MoodEntry{}))

	h := NewMoodHandler(moodService.NewMoodService(moodRepo.NewMoodRepository(db), nil, nil, time.UTC, nil))

	userID := uuid.New().String()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.POST("/api/moods", h.LogMood)
	r.GET("/api/moods", h.ListEntries)
	r.GET("/api/moods/stats", h.GetStats)
	r.GET("/api/moods/search", h.SearchNotes)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMoodHandler_LogAndStats(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodPost, "/api/moods", `{"mood": 70, "note": "<i>calm</i>"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data moodDto.LogMoodResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "calm", created.Data.Entry.Note)
	require.Equal(t, 1, created.Data.Stats.CurrentStreak)

	w = serve(r, http.MethodGet, "/api/moods/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Data analytics.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Equal(t, 1, stats.Data.TotalEntries)
	require.Equal(t, float64(70), stats.Data.AverageMood)
	require.NotNil(t, stats.Data.TodayMood)

	w = serve(r, http.MethodGet, "/api/moods?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "calm")
}

func TestMoodHandler_Validation(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodPost, "/api/moods", `{"note": "no mood"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Mood is required")

	w = serve(r, http.MethodPost, "/api/moods", `{"mood": 120}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, "/api/moods/search", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	// No search index configured.
	w = serve(r, http.MethodGet, "/api/moods/search?q=calm", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
