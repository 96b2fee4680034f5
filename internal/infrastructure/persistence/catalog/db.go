package catalog

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DialectFor 驱动名 -> goqu方言
func DialectFor(driver string) string {
	switch driver {
	case "postgres", "pgx":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return "mysql"
	}
}

// NewDB 复用gorm持有的连接池，只是换成sqlx的接口
// 连接池的生命周期仍归gorm管理，这里不负责Close
func NewDB(sqlDB *sql.DB, driver string) *sqlx.DB {
	return sqlx.NewDb(sqlDB, driver)
}

// Ping 健康检查：SELECT 1
func Ping(ctx context.Context, db *sqlx.DB) error {
	var one int
	return db.GetContext(ctx, &one, "SELECT 1")
}
