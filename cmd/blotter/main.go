package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hedgeblotter/internal/config"
	cronrunner "hedgeblotter/internal/cron"
	"hedgeblotter/internal/handler"
	"hedgeblotter/internal/logger"
	"hedgeblotter/internal/marketdata"
	"hedgeblotter/internal/service"
	"hedgeblotter/internal/session"
	"hedgeblotter/internal/store"
)

func main() {
	cfgPath := os.Getenv("BLOTTER_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("BLOTTER_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	mdClient := newMarketDataClient(cfg.Bloomberg)

	if len(os.Args) > 1 && os.Args[1] == "selftest" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if !marketdata.Selftest(ctx, mdClient, os.Stdout) {
			os.Exit(1)
		}
		return
	}

	csvStore := store.New(cfg.Data.Dir, logger)
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		logger.Fatal("data dir create failed", zap.Error(err))
	}

	sessions := session.NewManager(csvStore, logger)
	blotter := &service.Blotter{Store: csvStore, Logger: logger}
	importer := &service.Importer{Blotter: blotter, Logger: logger}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DataDir: cfg.Data.Dir}
	healthHandler.Register(engine)
	tradeHandler := &handler.TradeHandler{Sessions: sessions, Blotter: blotter}
	tradeHandler.Register(engine)
	historyHandler := &handler.HistoryHandler{Sessions: sessions, Blotter: blotter}
	historyHandler.Register(engine)
	importHandler := &handler.ImportHandler{Sessions: sessions, Importer: importer}
	importHandler.Register(engine)
	chartHandler := &handler.ChartHandler{Sessions: sessions, Client: mdClient, Logger: logger}
	chartHandler.Register(engine)
	dataHandler := &handler.DataHandler{Sessions: sessions, Blotter: blotter, Store: csvStore, Logger: logger}
	dataHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		_, err = cronRunner.Add(cfg.Cron.Backup, func(ctx context.Context) {
			copies, err := csvStore.Backup()
			if err != nil {
				logger.Warn("cron backup failed", zap.Error(err))
				return
			}
			if len(copies) > 0 {
				logger.Info("cron backup ok", zap.Strings("files", copies))
			}
		})
		if err != nil {
			logger.Warn("cron register backup failed", zap.Error(err))
		}
		_, err = cronRunner.Add(cfg.Cron.Summary, func(ctx context.Context) {
			s := csvStore.Summary()
			logger.Info("data summary",
				zap.Int("live_vanilla", s.LiveVanillaTrades),
				zap.Int("live_exotic", s.LiveExoticTrades),
				zap.Int("history", s.TradeHistoryCount),
			)
		})
		if err != nil {
			logger.Warn("cron register summary failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newMarketDataClient(cfg config.BloombergConfig) marketdata.Client {
	if !cfg.Enabled {
		return marketdata.StubClient{}
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return marketdata.NewGatewayClient(httpClient, cfg.Host)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
