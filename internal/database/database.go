package database

import (
	"fmt"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/config"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DemoTicketsTable is the isolated sandbox table for demonstration data. It
// shares the ServiceTicket schema so demo records and the numbering sequence
// they consume never collide with real tickets.
const DemoTicketsTable = "service_tickets_demo"

// NewDatabase creates a new database connection.
// TranslateError is enabled so uniqueness violations surface as
// gorm.ErrDuplicatedKey; the ticket-number retry path depends on that.
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.ConnectionString()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
	)

	return db, nil
}

// AutoMigrate runs automatic migrations (for development only; production
// uses the goose migrations under migrations/)
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Customer{},
		&domain.Project{},
		&domain.TimeEntry{},
		&domain.ServiceTicket{},
		&domain.ServiceTicketExpense{},
		&domain.ExportFile{},
	); err != nil {
		return err
	}
	// The demo sandbox table shares the ServiceTicket struct
	return db.Table(DemoTicketsTable).AutoMigrate(&domain.ServiceTicket{})
}

// HealthCheck pings the database
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Ping()
}

// HealthCheckWithStats pings the database and returns pool statistics
func HealthCheckWithStats(db *gorm.DB) (map[string]interface{}, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	stats := sqlDB.Stats()
	return map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
	}, nil
}
