package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/visual-regression/baseline"
	"github.com/hairizuan-noorazman/visual-regression/comparator"
	"github.com/hairizuan-noorazman/visual-regression/database"
	"github.com/hairizuan-noorazman/visual-regression/driver"
	"github.com/hairizuan-noorazman/visual-regression/fixture"
	"github.com/hairizuan-noorazman/visual-regression/isolation"
	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/order"
	"github.com/hairizuan-noorazman/visual-regression/report"
	"github.com/hairizuan-noorazman/visual-regression/storage"
	"github.com/hairizuan-noorazman/visual-regression/suite"
	"github.com/hairizuan-noorazman/visual-regression/user"
)

// loadConfig reads the config file and builds the logger.
func loadConfig() (*Config, logger.Logger, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.NewLogrusLogger(cfg.Log.Level), nil
}

// openDatabase connects per the config. sqlite databases are created and
// migrated on the spot; mysql schemas come from the migrate command.
func openDatabase(cfg *Config) (*gorm.DB, func(), error) {
	db, err := database.Connect(database.Config{
		Driver:       cfg.Database.Driver,
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	return db, func() { sqlDB.Close() }, nil
}

func newBaselineStore(cfg *Config, log logger.Logger) (*baseline.Store, error) {
	return baseline.NewStore(cfg.Paths.BaselineDir, cfg.Paths.VersionsDir, log)
}

func newBlobStorage(cfg *Config) (storage.BlobStorage, error) {
	return storage.NewBlobStorage(cfg.Storage.Type, map[string]interface{}{
		"base_dir":       cfg.Storage.BaseDir,
		"bucket":         cfg.Storage.S3Bucket,
		"region":         cfg.Storage.S3Region,
		"presign_expiry": cfg.Storage.S3PresignExpiry,
	})
}

func newComparator(cfg *Config, log logger.Logger) *comparator.Comparator {
	return comparator.New(cfg.Paths.BaselineDir, cfg.Paths.ScreenshotsDir, cfg.Paths.DiffDir, log)
}

func newReporter(db *gorm.DB, cfg *Config, log logger.Logger) (*report.Reporter, report.Store, error) {
	store := report.NewMySQLStore(db, log)
	rep, err := report.NewReporter(store, cfg.Paths.ReportsDir, cfg.App.Environment, log)
	if err != nil {
		return nil, nil, err
	}
	return rep, store, nil
}

func newSeeder(db *gorm.DB, log logger.Logger) *fixture.Seeder {
	return fixture.NewSeeder(user.NewMySQLStore(db, log), order.NewMySQLStore(db, log), log)
}

// newIsolationSession opens an isolation session with OS signal cleanup
// installed.
func newIsolationSession(cfg *Config, log logger.Logger) (*isolation.Session, error) {
	sess, err := isolation.NewSession(cfg.Paths.IsolationRoot, cfg.App.Environment, log,
		isolation.WithLockTimeout(cfg.Run.LockTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open isolation session: %w", err)
	}
	sess.HandleSignals()
	return sess, nil
}

// newSuiteEnv wires the capture environment over a real browser.
func newSuiteEnv(cfg *Config, baselines *baseline.Store, seeder *fixture.Seeder, log logger.Logger) *suite.Env {
	return &suite.Env{
		BaseURL:        cfg.App.BaseURL,
		ScreenshotsDir: cfg.Paths.ScreenshotsDir,
		DiffDir:        cfg.Paths.DiffDir,
		Credentials:    loadCredentials(cfg),
		NewDriver: func(ctx context.Context) (driver.Driver, error) {
			return driver.NewRodDriver(ctx, driver.RodConfig{
				DebuggerURL:       cfg.Browser.DebuggerURL,
				Headless:          cfg.Browser.Headless,
				NavigationTimeout: cfg.Browser.NavigationTimeout,
			}, log)
		},
		Baselines:  baselines,
		Comparator: newComparator(cfg, log),
		Seeder:     seeder,
		Logger:     log,
	}
}

// loadCredentials picks the login used by authenticated suites: the saved
// fixture set when one exists, otherwise the app's stock account.
func loadCredentials(cfg *Config) fixture.Credentials {
	files, err := fixture.NewFiles(cfg.Paths.FixturesDir, cfg.App.Environment)
	if err != nil {
		return fixture.Set{}.Credentials()
	}
	set, err := files.Load()
	if err != nil {
		return fixture.Set{}.Credentials()
	}
	return set.Credentials()
}
