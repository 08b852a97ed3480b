package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notesboard/cmd/internal/config"
	"notesboard/cmd/internal/domain/policy"
	"notesboard/cmd/internal/domain/sqlite"
	"notesboard/cmd/internal/domain/sqlite/repository"
	"notesboard/cmd/internal/http/handler"
	authmiddleware "notesboard/cmd/internal/http/middleware"
	"notesboard/cmd/internal/infrastructure/aws/websocket"
	"notesboard/cmd/internal/infrastructure/metrics"
	"notesboard/cmd/internal/infrastructure/notifier"
	"notesboard/cmd/internal/service"
	"notesboard/cmd/internal/service/jobs"
	"notesboard/cmd/internal/utils"
	"notesboard/cmd/internal/utils/uid"
	"notesboard/cmd/internal/utils/validators"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

type closableNotifier interface {
	service.Notifier
	io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	log.SetLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = uid.Init(cfg.NodeID); err != nil {
		log.Fatalf("failed to init id generator: %v", err)
	}
	validate := validators.New()

	// Init SQLite
	db, err := sqlite.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	sessions, err := utils.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to set up sessions: %v", err)
	}

	codeNotifier, err := newNotifier(cfg)
	if err != nil {
		log.Fatalf("failed to set up notifier: %v", err)
	}
	defer codeNotifier.Close()

	// Getting repos
	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	connRepo := repository.NewConnectionRepository(db)

	// Getting services
	var dispatcher service.EventDispatcher
	var wsService *service.WebSocketService
	if cfg.WSGatewayEndpoint != "" {
		wsService, err = newWebSocketService(ctx, cfg, connRepo)
		if err != nil {
			log.Fatalf("failed to set up websocket gateway: %v", err)
		}
		dispatcher = wsService
	}

	userService := service.NewUserService(userRepo, validate, service.NewCodeIssuer(service.DefaultCodeTTL), codeNotifier, sessions)
	noteService := service.NewNoteService(noteRepo, userRepo, dispatcher, policy.NewNotePolicy(), validate)

	// Background jobs
	go jobs.NewPendingUserCleaner(userRepo, cfg.PendingUserTTL).Start(ctx)
	if wsService != nil {
		go jobs.NewConnectionCleaner(wsService).Start(ctx)
	}

	// Getting handlers
	userRoutes := handler.NewUserDefault(userService, sessions, cfg.IsProduction())
	noteRoutes := handler.NewNoteDefault(noteService)
	auth := authmiddleware.NewAuthMiddleware(&authmiddleware.AuthMiddlewareConfig{
		UserRepo: userRepo,
		Sessions: sessions,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.PublicBaseURL},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("64K"))

	if cfg.MetricsEnabled {
		metrics.Register(prometheus.DefaultRegisterer)
		e.Use(metrics.Middleware())
		e.GET("/metrics", metrics.Handler())
	}

	api := e.Group("/api")

	// Users
	api.POST("/sign-up", userRoutes.SignUp)
	api.POST("/verify-code", userRoutes.VerifyCode)
	api.POST("/sign-in", userRoutes.SignIn)
	api.GET("/check-username-unique", userRoutes.CheckUsername)

	// Notes
	api.POST("/post-note", noteRoutes.PostNote, auth)
	api.GET("/get-notes", noteRoutes.GetNotes, auth)
	api.DELETE("/delete-note/:noteid", noteRoutes.DeleteNote, auth)

	// API Gateway websocket integrations
	if wsService != nil {
		wsRoutes := handler.NewWSDefault(wsService, sessions)
		ws := e.Group("/ws")
		ws.POST("/connect", wsRoutes.HandleConnect, auth)
		ws.POST("/disconnect", wsRoutes.HandleDisconnect)
		ws.POST("/message", wsRoutes.HandleMessage)
	}

	// Docker Compose healthcheck
	e.GET("/health", healthCheckRoute)

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
}

func newNotifier(cfg *config.Config) (closableNotifier, error) {
	if cfg.Notifier == config.NotifierKafka {
		return notifier.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaTimeout)
	}

	log.Warn("verification codes are only logged, set NOTIFIER=kafka to deliver them")
	return notifier.NewLogNotifier(), nil
}

func newWebSocketService(ctx context.Context, cfg *config.Config, connRepo service.ConnectionRepository) (*service.WebSocketService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.WSGatewayRegion))
	if err != nil {
		return nil, err
	}

	gateway := websocket.NewAWSGatewayClient(awsCfg, cfg.WSGatewayEndpoint)
	return service.NewWebSocketService(connRepo, gateway), nil
}

func healthCheckRoute(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
