package database

import (
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/dibyendu2004/BrightPath/config"
	"github.com/dibyendu2004/BrightPath/model"
	applog "github.com/dibyendu2004/BrightPath/utils/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage defines the interface that all database implementations must satisfy
type Storage interface {
	Init() error
	Close() error
	HealthCheck() error
	GetDB() *gorm.DB
}

type GORMStore struct {
	db  *gorm.DB
	log *applog.Logger
}

// newGormLogger logs SQL at Info in development and only failures in
// production. Missing rows are an expected outcome and never logged.
func newGormLogger(w logger.Writer, production bool) logger.Interface {
	level := logger.Info
	if production {
		level = logger.Error
	}
	return logger.New(w, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  !production,
	})
}

// StartGORM opens the configured store: PostgreSQL by default, SQLite when
// DB_DRIVER=sqlite.
func StartGORM(cfg *config.EnvironmentVariable, log *applog.Logger) (*GORMStore, error) {
	gormLogger := newGormLogger(stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags), cfg.IsProduction())

	var dialector gorm.Dialector
	switch cfg.DB_DRIVER {
	case "sqlite":
		dialector = sqlite.Open(cfg.DB_PATH)
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DB_HOST,
			cfg.DB_USER_NAME,
			cfg.DB_PASSWORD,
			cfg.DB_NAME,
			cfg.DB_PORT,
			cfg.DB_SSL_MODE,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB_DRIVER)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    cfg.DB_DRIVER != "sqlite",
		TranslateError: true,
	})
	if err != nil {
		log.Error("Unable to connect to database", "driver", cfg.DB_DRIVER, "error", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.DB_DRIVER == "sqlite" {
		// one writer; also keeps ":memory:" a single database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("Connected to database", "driver", cfg.DB_DRIVER)

	return &GORMStore{db: db, log: log}, nil
}

// OpenInMemory returns a migrated, private SQLite store. Used by tests and
// by the seed command's dry-run mode.
func OpenInMemory(log *applog.Logger) (*GORMStore, error) {
	cfg := &config.EnvironmentVariable{GO_ENV: "production", DB_DRIVER: "sqlite", DB_PATH: ":memory:"}
	store, err := StartGORM(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := store.Init(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	s.log.Info("Running GORM AutoMigrate")

	err := s.db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Purchase{},
		&model.CourseProgress{},
		&model.CronJobLog{},
	)
	if err != nil {
		s.log.Error("Error running AutoMigrate", "error", err)
		return err
	}

	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for services and handlers
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
