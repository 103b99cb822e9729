package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/logging"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health(ctx context.Context) map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error
	GetDB() *gorm.DB

	// Store is the transactional content store used by voting and acceptance
	Store() Store
}

type service struct {
	db    *gorm.DB
	store *gormStore
	log   zerolog.Logger
}

// New connects to postgres through the pgx stdlib driver
func New(dsn string, log zerolog.Logger, debug bool) (Service, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	return Open(postgres.New(postgres.Config{Conn: sqlDB}), log, debug)
}

// Open wraps any gorm dialector; tests use it with sqlite
func Open(dialector gorm.Dialector, log zerolog.Logger, debug bool) (Service, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.Gorm(log, debug),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error opening gorm: %w", err)
	}

	log.Info().Str("dialect", dialector.Name()).Msg("database connected")

	return &service{
		db:    db,
		store: &gormStore{db: db},
		log:   log,
	}, nil
}

// AutoMigrate creates the tables from the models. Postgres deployments use
// the SQL migrations instead; this is for throwaway databases.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Answer{},
		&models.Vote{},
		&models.Tag{},
		&models.Comment{},
	)
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

func (s *service) Store() Store {
	return s.store
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats := make(map[string]string)

	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db error: %v", err)
		return stats
	}

	err = sqlDB.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := sqlDB.Stats()
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	s.log.Info().Msg("disconnected from database")
	return sqlDB.Close()
}
