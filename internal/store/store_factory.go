package store

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"tripnotify/internal/config"
	"tripnotify/internal/repository"
	"tripnotify/internal/store/memory"
	"tripnotify/internal/store/mysql"
)

// NewDB opens the MySQL pool, or returns nil when no DSN is configured
// so the process falls back to the in-memory backend.
func NewDB(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	if cfg.MySQLDSN == "" {
		return nil, nil
	}
	sqlDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Error("mysql open failed", zap.Error(err))
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Error("mysql ping failed", zap.Error(err))
		return nil, err
	}
	return sqlDB, nil
}

func NewStore(db *sql.DB, logger *zap.Logger) repository.NotificationStore {
	if db == nil {
		logger.Info("no MYSQL_DSN configured, using in-memory notification store")
		return memory.New(logger)
	}
	return mysql.New(db, logger)
}
