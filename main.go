package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/backsoul/quizwidget/pkg/celebration"
	"github.com/backsoul/quizwidget/pkg/config"
	"github.com/backsoul/quizwidget/pkg/handlers"
	"github.com/backsoul/quizwidget/pkg/loader"
	"github.com/backsoul/quizwidget/pkg/logger"
	"github.com/backsoul/quizwidget/pkg/redis"
	"github.com/backsoul/quizwidget/pkg/services"
	"github.com/backsoul/quizwidget/pkg/websocket"
	"github.com/gorilla/securecookie"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("el servidor terminó con error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	zl.Info("🚀 Iniciando Quiz Widget", zap.String("env", cfg.Env))

	store, closeStore, err := initStore(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := websocket.NewHub(zl)
	go hub.Run()
	defer hub.Stop()

	presenter := celebration.NewPresenter(rand.New(rand.NewSource(time.Now().UnixNano())))
	quizLoader := loader.NewLoader(&fasthttp.Client{Name: "quizwidget-loader"}, cfg.Quiz.FetchTimeout)

	widgetService := services.NewWidgetService(
		store,
		quizLoader,
		presenter,
		hub,
		zl,
		cfg.Quiz.SourceURL,
		cfg.Session.TTL,
	)
	questionService := services.NewQuestionService(cfg.Quiz.DocumentPath, zl)
	questionService.LogSummary()

	cookies, err := initCookies(cfg, zl)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(
		handlers.NewWidgetHandler(widgetService, cookies, zl),
		handlers.NewQuestionHandler(questionService, widgetService, zl),
		handlers.NewLiveHandler(widgetService, cookies, hub, zl),
		zl,
	)

	server := &fasthttp.Server{
		Handler: router.Handle,
		Name:    "Quiz Widget",
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("🎮 Servidor iniciado",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("quiz_source", cfg.Quiz.SourceURL),
		)
		errCh <- server.ListenAndServe(cfg.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("error al iniciar el servidor: %w", err)
	case <-ctx.Done():
	}

	zl.Info("🔄 Señal de apagado recibida")
	if err := server.Shutdown(); err != nil {
		zl.Warn("error cerrando el servidor", zap.Error(err))
	}
	widgetService.Wait()
	return nil
}

func initStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (services.Store, func(), error) {
	if !cfg.Redis.Enabled() {
		zl.Info("usando store en memoria")
		return services.NewMemoryStore(), func() {}, nil
	}

	zl.Info("🔌 Conectando a Redis", zap.String("addr", cfg.Redis.Addr))
	client, err := redis.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	zl.Info("✅ Conexión exitosa a Redis")

	return services.NewRedisStore(client), func() { _ = client.Close() }, nil
}

func initCookies(cfg *config.Config, zl *zap.Logger) (*handlers.SessionCookies, error) {
	hashKey := []byte(cfg.Session.HashKey)
	if len(hashKey) == 0 {
		zl.Warn("SESSION_HASH_KEY vacío: se genera una clave aleatoria, las sesiones no sobreviven a un reinicio")
		hashKey = securecookie.GenerateRandomKey(64)
	}

	var blockKey []byte
	if cfg.Session.BlockKey != "" {
		blockKey = []byte(cfg.Session.BlockKey)
		switch len(blockKey) {
		case 16, 24, 32:
		default:
			return nil, fmt.Errorf("SESSION_BLOCK_KEY debe tener 16, 24 o 32 bytes, tiene %d", len(blockKey))
		}
	}

	return handlers.NewSessionCookies(hashKey, blockKey, cfg.Session.TTL), nil
}
