package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/ovalhq/pavilion/internal/app"
	"github.com/ovalhq/pavilion/internal/captures"
	"github.com/ovalhq/pavilion/internal/handlers"
	"github.com/ovalhq/pavilion/internal/hub"
)

func main() {
	service, err := app.NewService("config.toml")
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	broadcast := hub.New()
	go broadcast.Run()
	service.Events = broadcast

	janitor := captures.NewJanitor(
		service.Store,
		service.Files,
		time.Duration(service.Config.Captures.SweepIntervalMinutes)*time.Minute,
	)
	if err := janitor.Start(); err != nil {
		logger.Error.Fatalf("Failed to start capture janitor: %v", err)
	}
	defer janitor.Stop()

	authHandler := handlers.NewAuthHandler(service)
	matchHandler := handlers.NewMatchHandler(service)
	scorecardHandler := handlers.NewScorecardHandler(service)
	cameraHandler := handlers.NewCameraHandler(service)
	captureHandler := handlers.NewCaptureHandler(service)
	wsHandler := handlers.NewWSHandler(service, broadcast)

	http.HandleFunc("POST /api/register", handlers.WithMetrics("/api/register", authHandler.HandleRegister))
	http.HandleFunc("POST /api/login", handlers.WithMetrics("/api/login", authHandler.HandleLogin))
	http.HandleFunc("POST /api/logout", handlers.WithMetrics("/api/logout", authHandler.HandleLogout))
	http.HandleFunc("GET /api/me", handlers.WithMetrics("/api/me", authHandler.HandleMe))

	http.HandleFunc("GET /api/matches", handlers.WithMetrics("/api/matches", matchHandler.HandleList))
	http.HandleFunc("GET /api/matches/{id}", handlers.WithMetrics("/api/matches/{id}", matchHandler.HandleGet))
	http.HandleFunc("POST /api/matches", handlers.WithMetrics("/api/matches", matchHandler.HandleCreate))
	http.HandleFunc("PUT /api/matches/{id}", handlers.WithMetrics("/api/matches/{id}", matchHandler.HandleUpdate))
	http.HandleFunc("DELETE /api/matches/{id}", handlers.WithMetrics("/api/matches/{id}", matchHandler.HandleDelete))

	http.HandleFunc("GET /api/matches/{id}/scorecard", handlers.WithMetrics("/api/matches/{id}/scorecard", scorecardHandler.HandleGet))
	http.HandleFunc("POST /api/matches/{id}/scorecard/batsman", handlers.WithMetrics("/api/matches/{id}/scorecard/batsman", scorecardHandler.HandleAddBatsman))
	http.HandleFunc("PUT /api/matches/{id}/scorecard/batsman/{entryId}", handlers.WithMetrics("/api/matches/{id}/scorecard/batsman/{entryId}", scorecardHandler.HandleUpdateBatsman))
	http.HandleFunc("DELETE /api/matches/{id}/scorecard/batsman/{entryId}", handlers.WithMetrics("/api/matches/{id}/scorecard/batsman/{entryId}", scorecardHandler.HandleDeleteBatsman))
	http.HandleFunc("POST /api/matches/{id}/scorecard/bowler", handlers.WithMetrics("/api/matches/{id}/scorecard/bowler", scorecardHandler.HandleAddBowler))
	http.HandleFunc("PUT /api/matches/{id}/scorecard/bowler/{entryId}", handlers.WithMetrics("/api/matches/{id}/scorecard/bowler/{entryId}", scorecardHandler.HandleUpdateBowler))
	http.HandleFunc("DELETE /api/matches/{id}/scorecard/bowler/{entryId}", handlers.WithMetrics("/api/matches/{id}/scorecard/bowler/{entryId}", scorecardHandler.HandleDeleteBowler))

	http.HandleFunc("GET /api/camera-config", handlers.WithMetrics("/api/camera-config", cameraHandler.HandleGetConfig))
	http.HandleFunc("PUT /api/camera-config", handlers.WithMetrics("/api/camera-config", cameraHandler.HandleUpdateConfig))
	http.HandleFunc("GET /api/stream/{camera}", cameraHandler.HandleStream)
	http.HandleFunc("GET /api/snapshot/{camera}", cameraHandler.HandleSnapshot)

	http.HandleFunc("POST /api/capture", handlers.WithMetrics("/api/capture", captureHandler.HandleCreate))
	http.HandleFunc("GET /api/captures", handlers.WithMetrics("/api/captures", captureHandler.HandleList))
	http.HandleFunc("DELETE /api/captures/{id}", handlers.WithMetrics("/api/captures/{id}", captureHandler.HandleDelete))

	http.Handle("GET /captures/", http.StripPrefix(
		"/captures/",
		http.FileServer(http.Dir(service.Config.Captures.Dir)),
	))

	http.HandleFunc("GET /ws", wsHandler.HandleWS)
	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting scoreboard server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Scoreboard server failed: %v", err)
	}
}
