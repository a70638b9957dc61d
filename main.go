// File: medivoice/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medivoice/config"
	"medivoice/cron"
	"medivoice/database"
	appointmentRepo "medivoice/database/repository/appointment"
	"medivoice/handlers"
	"medivoice/middleware"
	"medivoice/routes"
	gcal "medivoice/services/calendar"
	"medivoice/services/dialog"
	"medivoice/services/nlp"
	"medivoice/services/speech"
	"medivoice/services/tasks"
	"medivoice/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	database.InitDB()
	utils.InitSessionCache()

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid clinic timezone %q: %v", cfg.ClinicTimezone, err)
	}

	ctx := context.Background()

	transcriber, err := speech.NewGoogleTranscriber(ctx, cfg.GoogleServiceAccountFile, cfg.STTLanguageCode)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize transcriber: %v", err)
	}
	synthesizer, err := speech.NewGoogleSynthesizer(ctx, cfg.GoogleServiceAccountFile, cfg.TTSLanguageCode, cfg.TTSVoice, "tts_audio")
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize synthesizer: %v", err)
	}
	calendarSvc, err := gcal.NewGoogleCalendar(ctx, cfg.GoogleServiceAccountFile, cfg.CalendarID, cfg.ClinicTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar service: %v", err)
	}

	var fallback nlp.FieldExtractor
	if cfg.GeminiAPIKey != "" {
		gemini, err := nlp.NewGeminiExtractor(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize Gemini extractor: %v", err)
		}
		fallback = gemini
	} else {
		logger.Warn("main: GEMINI_API_KEY not set, LLM gap filling disabled")
	}

	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	store := dialog.NewRedisSessionStore(utils.GetSessionCacheClient(), sessionTTL)

	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	reminderScheduler := tasks.NewAsynqReminderScheduler()
	cron.InitReminderWorker(apptRepo)

	processor := &dialog.DefaultTurnProcessor{
		Store:           store,
		Fallback:        fallback,
		Calendar:        calendarSvc,
		Records:         apptRepo,
		Reminders:       reminderScheduler,
		Loc:             loc,
		LLMTimeout:      time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		CalendarTimeout: time.Duration(cfg.CalendarTimeoutSeconds) * time.Second,
		Logger:          logger,
	}

	voiceHandler := handlers.NewVoiceHandler(
		processor,
		transcriber,
		synthesizer,
		"temp_audio",
		time.Duration(cfg.STTTimeoutSeconds)*time.Second,
		time.Duration(cfg.TTSTimeoutSeconds)*time.Second,
		logger,
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"X-User-Transcript", "X-Bot-Text", "X-Agent-State", "X-Calendar-Error", "X-Session-Ended"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterHealthRoute(router)
	routes.RegisterVoiceRoutes(router, voiceHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("main: listening on :%s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
	}

	_ = transcriber.Close()
	_ = synthesizer.Close()
	_ = reminderScheduler.Close()
}
