package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"smart-campus/backend/config"
	"smart-campus/backend/internal/api/handler"
	"smart-campus/backend/internal/api/router"
	"smart-campus/backend/internal/repository"
	"smart-campus/backend/internal/service"
	"smart-campus/backend/pkg/database"
	applogger "smart-campus/backend/pkg/logger"
	"smart-campus/backend/pkg/mq"
	"smart-campus/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认 ./config/config.yaml）")
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
		zap.String("timezone", cfg.Timeline.Timezone),
		zap.String("window", cfg.Timeline.WindowStart+"-"+cfg.Timeline.WindowEnd),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：失败时预约限流退化为进程内令牌桶）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，预约限流使用本地令牌桶", zap.Error(err))
		rdb = nil
	}

	// 5. 连接 RabbitMQ（可选：未配置或失败时不发布预约事件）
	var publisher service.EventPublisher
	var mqPublisher *mq.Publisher
	if cfg.MQ.URL != "" {
		mqPublisher, err = mq.NewPublisher(&cfg.MQ, logger)
		if err != nil {
			logger.Warn("RabbitMQ 连接失败，预约事件将不会发布", zap.Error(err))
		} else {
			publisher = mqPublisher
		}
	}

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc, err := service.NewService(cfg, repo, publisher, service.SystemClock{}, logger)
	if err != nil {
		logger.Fatal("初始化服务失败", zap.Error(err))
	}
	if err := handler.RegisterValidators(); err != nil {
		logger.Fatal("注册参数校验器失败", zap.Error(err))
	}
	h := handler.NewHandler(svc, sqlDB.PingContext)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, rdb, logger)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	if mqPublisher != nil {
		if err := mqPublisher.Close(); err != nil {
			logger.Warn("关闭 RabbitMQ 连接失败", zap.Error(err))
		}
	}
	if rdb != nil {
		rdb.Close()
	}
	sqlDB.Close()

	logger.Info("服务器已关闭")
}
