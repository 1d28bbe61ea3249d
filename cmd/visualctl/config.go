package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all harness configuration.
type Config struct {
	App      AppConfig
	Paths    PathsConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Browser  BrowserConfig
	Server   ServerConfig
	Run      RunConfig
	Log      LogConfig
}

// AppConfig describes the application under test.
type AppConfig struct {
	BaseURL     string
	Environment string
}

// PathsConfig holds the working directories of the harness.
type PathsConfig struct {
	BaselineDir    string
	VersionsDir    string
	ScreenshotsDir string
	DiffDir        string
	ReportsDir     string
	FixturesDir    string
	IsolationRoot  string
	MigrationsPath string
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
}

// StorageConfig holds blob storage configuration for baseline and report
// sync.
type StorageConfig struct {
	Type            string
	BaseDir         string
	S3Bucket        string
	S3Region        string
	S3PresignExpiry time.Duration
}

// BrowserConfig holds browser automation configuration.
type BrowserConfig struct {
	Headless          bool
	DebuggerURL       string
	NavigationTimeout time.Duration
}

// ServerConfig holds the report server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RunConfig holds suite execution configuration.
type RunConfig struct {
	Workers     int
	LockTimeout time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.base_url", "http://localhost:8000")
	v.SetDefault("app.environment", "visual_test")

	v.SetDefault("paths.baseline_dir", "./baselines")
	v.SetDefault("paths.versions_dir", "./baseline_versions")
	v.SetDefault("paths.screenshots_dir", "./screenshots")
	v.SetDefault("paths.diff_dir", "./diffs")
	v.SetDefault("paths.reports_dir", "./reports")
	v.SetDefault("paths.fixtures_dir", "./fixtures")
	v.SetDefault("paths.isolation_root", "./.isolation")
	v.SetDefault("paths.migrations_path", "migrations")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "./visual_regression.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_dir", "./remote_artifacts")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_presign_expiry", "15m")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.debugger_url", "")
	v.SetDefault("browser.navigation_timeout", "30s")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("run.workers", 2)
	v.SetDefault("run.lock_timeout", "300s")

	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults
	}

	var config Config

	config.App.BaseURL = v.GetString("app.base_url")
	config.App.Environment = v.GetString("app.environment")

	config.Paths.BaselineDir = v.GetString("paths.baseline_dir")
	config.Paths.VersionsDir = v.GetString("paths.versions_dir")
	config.Paths.ScreenshotsDir = v.GetString("paths.screenshots_dir")
	config.Paths.DiffDir = v.GetString("paths.diff_dir")
	config.Paths.ReportsDir = v.GetString("paths.reports_dir")
	config.Paths.FixturesDir = v.GetString("paths.fixtures_dir")
	config.Paths.IsolationRoot = v.GetString("paths.isolation_root")
	config.Paths.MigrationsPath = v.GetString("paths.migrations_path")

	config.Database.Driver = v.GetString("database.driver")
	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")

	config.Storage.Type = v.GetString("storage.type")
	config.Storage.BaseDir = v.GetString("storage.base_dir")
	config.Storage.S3Bucket = v.GetString("storage.s3_bucket")
	config.Storage.S3Region = v.GetString("storage.s3_region")
	config.Storage.S3PresignExpiry = v.GetDuration("storage.s3_presign_expiry")

	config.Browser.Headless = v.GetBool("browser.headless")
	config.Browser.DebuggerURL = v.GetString("browser.debugger_url")
	config.Browser.NavigationTimeout = v.GetDuration("browser.navigation_timeout")

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Run.Workers = v.GetInt("run.workers")
	config.Run.LockTimeout = v.GetDuration("run.lock_timeout")

	config.Log.Level = v.GetString("log.level")

	return &config, nil
}
