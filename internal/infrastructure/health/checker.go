package health

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/kidsbook/internal/infrastructure/config"
	"github.com/xiebiao/kidsbook/internal/infrastructure/persistence/catalog"
	"github.com/xiebiao/kidsbook/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
	"github.com/xiebiao/kidsbook/pkg/metrics"
)

// ProbeFunc 一次探活
type ProbeFunc func(ctx context.Context) error

// Checker 数据库探活
// Check 供 /api/healthchecker 同步调用；Run 在后台按固定间隔探活，只记日志和指标
type Checker struct {
	database ProbeFunc
	cache    ProbeFunc // 可为nil，只在后台记录
	interval time.Duration
	timeout  time.Duration
	log      *logrus.Logger
}

// NewChecker 创建探活器
func NewChecker(database, cache ProbeFunc, interval, timeout time.Duration, log *logrus.Logger) *Checker {
	metrics.InitMetrics()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		database: database,
		cache:    cache,
		interval: interval,
		timeout:  timeout,
		log:      log,
	}
}

// NewCheckerFromConfig 用catalog的sqlx连接执行 SELECT 1，redis走 PING
func NewCheckerFromConfig(cfg *config.Config, db *sqlx.DB, sessions *redis.SessionStore, log *logrus.Logger) *Checker {
	return NewChecker(
		func(ctx context.Context) error { return catalog.Ping(ctx, db) },
		sessions.Ping,
		cfg.Health.Interval,
		cfg.Health.Timeout,
		log,
	)
}

// Check 同步检查数据库
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.database(ctx); err != nil {
		return apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}
	return nil
}

// Run 阻塞直到ctx取消；interval<=0 时直接返回
func (c *Checker) Run(ctx context.Context) {
	if c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("后台探活已停止")
			return
		case <-ticker.C:
			c.probe(ctx)
		}
	}
}

func (c *Checker) probe(ctx context.Context) {
	start := time.Now()
	if err := c.Check(ctx); err != nil {
		metrics.SetGauge(metrics.DatabaseUp, 0)
		c.log.WithError(err).Error("数据库探活失败")
	} else {
		metrics.SetGauge(metrics.DatabaseUp, 1)
		c.log.WithField("latency", time.Since(start)).Debug("数据库探活成功")
	}

	if c.cache == nil {
		return
	}
	cacheCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.cache(cacheCtx); err != nil {
		c.log.WithError(err).Warn("Redis探活失败")
	}
}
