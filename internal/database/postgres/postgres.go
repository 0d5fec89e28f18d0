package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hydroatlas/internal/config"
	"hydroatlas/internal/models"
)

var (
	dbInstance *gorm.DB
	once       sync.Once
	initErr    error
)

// GetDB initializes and returns the shared GORM instance. The connection is
// established once for the process lifetime; later calls return the same
// instance. It enables the pgvector extension and migrates the schema.
func GetDB(cfg *config.PostgresConfig) (*gorm.DB, error) {
	once.Do(func() {
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.Username,
			cfg.Password,
			cfg.Database,
			cfg.SSLMode,
		)

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			initErr = fmt.Errorf("connect to postgres: %w", err)
			return
		}

		sqlDB, err := db.DB()
		if err != nil {
			initErr = fmt.Errorf("get underlying sql.DB: %w", err)
			return
		}

		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

		// The vector column type is unavailable until the extension exists.
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			initErr = fmt.Errorf("enable pgvector extension: %w", err)
			return
		}

		if err := db.AutoMigrate(
			&models.WaterObject{},
			&models.WaterObjectEmbedding{},
			&models.DocumentEmbedding{},
		); err != nil {
			initErr = fmt.Errorf("migrate schema: %w", err)
			return
		}

		dbInstance = db
	})

	return dbInstance, initErr
}

// Close safely closes the shared database connection.
func Close() error {
	if dbInstance == nil {
		return nil
	}
	sqlDB, err := dbInstance.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck pings the database.
func HealthCheck(ctx context.Context) error {
	if dbInstance == nil {
		return fmt.Errorf("database connection not initialized")
	}
	sqlDB, err := dbInstance.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
