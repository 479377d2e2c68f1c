package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

type Options struct {
	Driver     string
	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
}

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func newGormLogger() gormLogger.Interface {
	return gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Open connects to the configured driver ("postgres" or "sqlite").
func Open(logg *logger.Logger, opts Options) (*Service, error) {
	switch opts.Driver {
	case "postgres":
		return NewPostgresService(logg, opts)
	case "", "sqlite":
		return NewSQLiteService(logg, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", opts.Driver)
	}
}

func NewPostgresService(logg *logger.Logger, opts Options) (*Service, error) {
	serviceLog := logg.With("service", "PostgresService")

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		opts.PostgresUser,
		opts.PostgresPassword,
		opts.PostgresHost,
		opts.PostgresPort,
		opts.PostgresName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	serviceLog.Info("connected to postgres", "host", opts.PostgresHost, "name", opts.PostgresName)
	return &Service{db: db, log: serviceLog}, nil
}

// NewSQLiteService opens a SQLite database. The pool is capped at one
// connection: SQLite has a single writer and every mutation here runs inside
// a transaction.
func NewSQLiteService(logg *logger.Logger, path string) (*Service, error) {
	serviceLog := logg.With("service", "SQLiteService")
	if path == "" {
		path = "sunft.db"
	}
	dsn := path + "?_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	serviceLog.Info("opened sqlite", "path", path)
	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
