package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bedrock-relay/common/config"
	"bedrock-relay/common/logger"
	"bedrock-relay/middleware"
	"bedrock-relay/relay/meta"
	"bedrock-relay/router"
)

var port = flag.Int("port", 3000, "the listening port")

func main() {
	flag.Parse()

	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Logger.Info("bedrock-relay started",
		zap.String("region_default", config.DefaultRegion),
		zap.String("llama_profile_mode", config.LlamaProfileMode))

	logLevel := glog.LevelInfo
	if config.DebugEnabled {
		logLevel = glog.LevelDebug
	}

	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logLevel.String()),
			gmw.WithLogger(logger.Logger.Named("gin")),
		),
	)
	server.Use(middleware.RelayPanicRecover())
	server.Use(middleware.RequestId())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders,
		"Authorization",
		meta.HeaderRegion,
		meta.HeaderAccessKey,
		meta.HeaderSecretKey,
		meta.HeaderSessionToken,
		meta.HeaderInferenceProfile,
	)
	server.Use(cors.New(corsConfig))

	if config.EnablePrometheusMetrics {
		server.GET("/metrics",
			middleware.TokenAuth(middleware.StaticKeyAuthorizer(config.RelayTokens)),
			gin.WrapH(promhttp.Handler()))
		logger.Logger.Info("prometheus metrics endpoint available at /metrics")
	}

	router.SetRelayRouter(server)

	listenPort := strconv.Itoa(*port)
	if config.ServerPort != "" {
		listenPort = config.ServerPort
	}

	srv := &http.Server{
		Addr:    ":" + listenPort,
		Handler: server,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Logger.Info("listening", zap.String("port", listenPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(config.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("forced shutdown", zap.Error(err))
	}
}
