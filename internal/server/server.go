package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/moodtracker/internal/config"
	"anoa.com/moodtracker/internal/jobs"
	"anoa.com/moodtracker/internal/middleware"
	"anoa.com/moodtracker/pkg/logger"

	leaderboardHttp "anoa.com/moodtracker/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "anoa.com/moodtracker/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/moodtracker/internal/modules/leaderboard/service"

	moodHttp "anoa.com/moodtracker/internal/modules/mood/delivery/http"
	moodRepo "anoa.com/moodtracker/internal/modules/mood/repository"
	moodService "anoa.com/moodtracker/internal/modules/mood/service"

	notiHttp "anoa.com/moodtracker/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/moodtracker/internal/modules/notification/repository"
	notifService "anoa.com/moodtracker/internal/modules/notification/service"

	progressionHttp "anoa.com/moodtracker/internal/modules/progression/delivery/http"
	ledgerRepo "anoa.com/moodtracker/internal/modules/progression/repository"
	progressionService "anoa.com/moodtracker/internal/modules/progression/service"

	searchService "anoa.com/moodtracker/internal/modules/search/service"

	statHttp "anoa.com/moodtracker/internal/modules/stat/delivery/http"
	statService "anoa.com/moodtracker/internal/modules/stat/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const wsPath = "/api/notifications/ws"

type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *jobs.Scheduler
	log         *logger.Logger
}

// NewServer wires every module. redisClient may be nil: game throttling and
// live notifications are then disabled.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logger.Logger) (*Server, error) {
	// Search
	var noteIndex moodService.NoteIndex
	if cfg.MeiliSearchHost != "" {
		meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		noteIndex = searchService.NewMeiliSearchService(meiliClient, log)
	} else {
		log.Warn("MEILISEARCH_HOST is empty, mood note search disabled")
	}

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient, log)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.Origins(), log)

	// Progression Module
	ledgerRepository := ledgerRepo.NewLedgerRepository(db)
	throttle := progressionService.NewRedisGameThrottle(redisClient, cfg.RateLimitGame)
	progressionSvc := progressionService.NewProgressionService(ledgerRepository, notificationSvc, throttle, cfg.Location, log)
	progressionHandler := progressionHttp.NewProgressionHandler(progressionSvc)

	// Leaderboard Module
	leaderboardRepository := leaderboardRepo.NewLeaderboardRepository(db)
	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepository)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	// Mood Module
	moodRepository := moodRepo.NewMoodRepository(db)
	moodSvc := moodService.NewMoodService(moodRepository, progressionSvc, noteIndex, cfg.Location, log)
	moodHandler := moodHttp.NewMoodHandler(moodSvc)

	statSvc := statService.NewStatService(moodSvc, progressionSvc, notificationSvc)
	statHandler := statHttp.NewStatHandler(statSvc)

	// Background jobs
	scheduler := jobs.NewScheduler(cfg.Location, log)
	sweep := jobs.NewStreakSweepJob(moodRepository, moodSvc, notificationSvc, cfg.StreakSweepSchedule, log)
	if err := scheduler.Register(sweep); err != nil {
		return nil, err
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.Origins())

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{wsPath},
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// XP routes
		protected.POST("/xp/ledger", progressionHandler.OpenLedger)
		protected.GET("/xp/me", progressionHandler.GetMyProgress)
		protected.GET("/xp/history", progressionHandler.GetHistory)
		protected.POST("/xp/daily-login", progressionHandler.ClaimDailyLogin)
		protected.POST("/xp/articles/:article_id/read", progressionHandler.ReadArticle)
		protected.POST("/xp/games/complete", progressionHandler.CompleteGame)
		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

		// Mood routes
		protected.POST("/moods", moodHandler.LogMood)
		protected.GET("/moods", moodHandler.ListEntries)
		protected.GET("/moods/stats", moodHandler.GetStats)
		protected.GET("/moods/search", moodHandler.SearchNotes)
		protected.GET("/moods/search/token", moodHandler.GetSearchToken)

		protected.GET("/dashboard", statHandler.GetDashboard)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		cfg:         cfg,
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
		log:         log,
	}, nil
}

// Run serves HTTP and the job scheduler until ctx is cancelled, then shuts both down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("http shutdown failed", "error", err)
	}
	s.scheduler.Stop(shutdownCtx)
	return runErr
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
