package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/kidsbook/internal/infrastructure/config"
	"github.com/xiebiao/kidsbook/pkg/logger"
	"github.com/xiebiao/kidsbook/pkg/tracing"
)

// @title           Kidsbook API
// @version         1.0
// @description     儿童图书商店：图书目录、评论、账号与登录
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. 配置
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	// 2. 日志
	log, closeLog, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 链路追踪（可选）
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(ctx, tracing.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: 1,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.WithError(err).Warn("关闭链路追踪失败")
			}
		}()
	}

	// 4. 依赖注入
	app, cleanup, err := InitializeApp(cfg, log)
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	defer cleanup()

	// 5. 后台任务：数据库探活、限流器清理
	go app.Checker.Run(ctx)
	if app.Limiter != nil {
		go app.Limiter.Run(ctx)
	}

	// 6. HTTP服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr": srv.Addr,
			"mode": cfg.Server.Mode,
		}).Info("服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP服务异常退出: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// 7. 优雅关闭
	log.Info("收到退出信号，开始关闭")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭HTTP服务失败: %w", err)
	}
	log.Info("服务已停止")
	return nil
}
