package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sezaiemrekonuk/freesight-ai/internal/application"
	"github.com/sezaiemrekonuk/freesight-ai/internal/application/analyze"
	"github.com/sezaiemrekonuk/freesight-ai/internal/config"
	domai "github.com/sezaiemrekonuk/freesight-ai/internal/domain/ai"
	"github.com/sezaiemrekonuk/freesight-ai/internal/infra/ai/groq"
	"github.com/sezaiemrekonuk/freesight-ai/internal/infra/ai/prompt"
	"github.com/sezaiemrekonuk/freesight-ai/internal/infra/ai/tts"
	"github.com/sezaiemrekonuk/freesight-ai/internal/infra/detector"
	"github.com/sezaiemrekonuk/freesight-ai/internal/infra/httpserver"
	"github.com/sezaiemrekonuk/freesight-ai/internal/logger"
	"github.com/sezaiemrekonuk/freesight-ai/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.WithError(err).Fatal("config load error")
	}

	ctx := context.Background()

	// detection model client, warmed up eagerly so the first request does
	// not race on initialization
	det := detector.NewClient(cfg.Detector.Endpoint, time.Duration(cfg.Detector.TimeoutSeconds)*time.Second)
	if err := det.WarmUp(ctx); err != nil {
		// start degraded: /health and the detect stage surface the condition
		logger.WithError(err).Warn("detection model not ready at startup")
	}

	// prompt template source
	var store prompt.Store
	if cfg.Prompts.Source == "minio" {
		store, err = prompt.NewObjectStore(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Prompts.Bucket,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logger.WithError(err).Fatal("minio prompt store init error")
		}
	} else {
		store = prompt.NewFSStore(cfg.Prompts.Dir)
	}
	prompts := prompt.NewManager(store)

	// language generation client
	chat := groq.NewClient(cfg.Groq.APIKey, cfg.Groq.BaseURL, time.Duration(cfg.Groq.TimeoutSeconds)*time.Second)

	// speech backends
	speech := make(map[domai.Provider]analyze.SpeechBackend)
	if cfg.TTS.Kokoro.BaseURL != "" {
		speech[domai.ProviderKokoro] = analyze.SpeechBackend{
			Synth: tts.NewKokoro(cfg.TTS.Kokoro.BaseURL, cfg.TTS.Kokoro.APIKey, 30*time.Second),
			Voice: cfg.TTS.Kokoro.Voice,
			Model: cfg.TTS.Kokoro.Model,
		}
	}
	if cfg.TTS.ElevenLabs.APIKey != "" {
		speech[domai.ProviderElevenLabs] = analyze.SpeechBackend{
			Synth: tts.NewElevenLabs(cfg.TTS.ElevenLabs.APIKey, 30*time.Second),
			Voice: cfg.TTS.ElevenLabs.VoiceID,
			Model: cfg.TTS.ElevenLabs.Model,
		}
	}
	var defaultProvider domai.Provider
	if cfg.TTS.DefaultProvider != "" {
		defaultProvider, err = domai.ParseProvider(cfg.TTS.DefaultProvider)
		if err != nil {
			logger.WithError(err).Fatal("bad tts.defaultProvider")
		}
	}

	svc := &analyze.Service{
		Detector:        det,
		Chat:            chat,
		Prompts:         prompts,
		Speech:          speech,
		DefaultProvider: defaultProvider,
		ConfThreshold:   cfg.Detector.ConfidenceThreshold,
		Clock:           application.SystemClock{},
		Log:             logger.Logger,
		OnSpeechFailure: middleware.IncrementSpeechFailures,
	}

	checkers := map[string]middleware.HealthChecker{
		"detector": &middleware.DetectorHealthChecker{Detector: det},
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(20, 5))
	mux.Use(middleware.APITokenAuth(cfg.Auth.APIToken))
	mux.Mount("/", httpserver.NewRouter(svc, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
}
