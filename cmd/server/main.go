package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/config"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/api/handler"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/api/middleware"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/api/router"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/repository"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/service"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/algoclient"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/database"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/events"
	applogger "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/logger"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	deps := service.Deps{
		Fetcher: algoclient.New(cfg.Algo.BaseURL, cfg.Algo.Timeout, cfg.Algo.RPS),
	}
	var limiter middleware.RateLimitStore
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，课表缓存关闭，限流降级为进程内令牌桶", zap.Error(err))
		rdb = nil
	} else {
		deps.Cache = rdb
		limiter = rdb
	}

	// 5. 事件发布（可选）
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Broker.Enabled {
		amqpPub, err := events.NewAMQPPublisher(cfg.Broker.URL, logger)
		if err != nil {
			logger.Warn("RabbitMQ 连接失败，事件发布已禁用", zap.Error(err))
		} else {
			publisher = amqpPub
		}
	}
	deps.Publisher = publisher

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, deps, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, limiter, db, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := publisher.Close(); err != nil {
		logger.Warn("关闭事件发布器失败", zap.Error(err))
	}

	sqlDB.Close()

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
