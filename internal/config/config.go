package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"time"

	"facilitybook/internal/models"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App          AppConfig            `yaml:"app"`
	Database     DatabaseConfig       `yaml:"database"`
	Redis        RedisConfig          `yaml:"redis"`
	Backup       BackupConfig         `yaml:"backup"`
	Monitoring   MonitoringConfig     `yaml:"monitoring"`
	Logging      LoggingConfig        `yaml:"logging"`
	API          APIConfig            `yaml:"api"`
	Rooms        []models.Room        `yaml:"rooms"`
	Bootstrap    BootstrapAdminConfig `yaml:"bootstrap_admin"`
	Registration RegistrationConfig   `yaml:"registration"`
	Report       ReportConfig         `yaml:"report"`
	Google       GoogleConfig         `yaml:"google"`
	Sync         SyncConfig           `yaml:"sync"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment" env:"FACILITY_ENV"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"FACILITY_DB_PATH"`
}

type RedisConfig struct {
	Enabled   bool   `yaml:"enabled" env:"FACILITY_REDIS_ENABLED"`
	Address   string `yaml:"address" env:"FACILITY_REDIS_ADDRESS"`
	Password  string `yaml:"password" env:"FACILITY_REDIS_PASSWORD"`
	DB        int    `yaml:"db"`
	PoolSize  int    `yaml:"pool_size"`
	KeyPrefix string `yaml:"key_prefix"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" env:"FACILITY_LOG_LEVEL"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port" env:"FACILITY_HTTP_PORT"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// BootstrapAdminConfig seeds the first Admin account. Admins cannot register.
type BootstrapAdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email" env:"FACILITY_ADMIN_EMAIL"`
	Password string `yaml:"password" env:"FACILITY_ADMIN_PASSWORD"`
}

type RegistrationConfig struct {
	StudentEmailPattern string `yaml:"student_email_pattern"`
}

type ReportConfig struct {
	APIKey         string `yaml:"api_key" env:"FACILITY_REPORT_API_KEY"`
	BaseURL        string `yaml:"base_url" env:"FACILITY_REPORT_BASE_URL"`
	Model          string `yaml:"model" env:"FACILITY_REPORT_MODEL"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

func (r ReportConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

type GoogleConfig struct {
	CredentialsFile      string `yaml:"credentials_file" env:"FACILITY_GOOGLE_CREDENTIALS_FILE"`
	BookingSpreadsheetID string `yaml:"bookings_spreadsheet_id"`
	BookingsSheetName    string `yaml:"bookings_sheet_name"`
}

// SyncConfig controls the background snapshot writer.
type SyncConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
}

// Load reads the YAML file at configPath, expanding ${VAR} references, then
// applies FACILITY_* environment overrides. A .env file in the working
// directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Bootstrap.Email == "" {
		return errors.New("bootstrap admin email is required")
	}
	if c.Registration.StudentEmailPattern != "" {
		if _, err := regexp.Compile(c.Registration.StudentEmailPattern); err != nil {
			return fmt.Errorf("invalid student email pattern: %w", err)
		}
	}
	if c.Backup.Enabled {
		if _, err := cron.ParseStandard(c.Backup.Schedule); err != nil {
			return fmt.Errorf("invalid backup schedule %q: %w", c.Backup.Schedule, err)
		}
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis address is required when redis is enabled")
	}
	return ValidateRooms(c.Rooms)
}

// ValidateRooms requires a non-empty catalog with unique, non-empty IDs.
func ValidateRooms(rooms []models.Room) error {
	if len(rooms) == 0 {
		return errors.New("at least one room is required")
	}
	seen := make(map[string]bool, len(rooms))
	for _, room := range rooms {
		if room.ID == "" {
			return fmt.Errorf("room '%s' has an empty ID", room.Name)
		}
		if seen[room.ID] {
			return fmt.Errorf("duplicate room ID found: %s", room.ID)
		}
		seen[room.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "facilitybook"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "facilitybook:"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "0 3 * * *"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 7
	}
	if c.Bootstrap.Name == "" {
		c.Bootstrap.Name = "Administrator"
	}
	if c.Registration.StudentEmailPattern == "" {
		c.Registration.StudentEmailPattern = models.DefaultStudentEmailPattern
	}
	if c.Report.TimeoutSeconds == 0 {
		c.Report.TimeoutSeconds = models.DefaultReportTimeout
	}
	if c.Report.Model == "" {
		c.Report.Model = "gpt-4o-mini"
	}
	if c.Google.BookingsSheetName == "" {
		c.Google.BookingsSheetName = "Bookings"
	}
	if c.Sync.MaxRetries == 0 {
		c.Sync.MaxRetries = 5
	}
	if c.Sync.BaseDelay == 0 {
		c.Sync.BaseDelay = 2 * time.Second
	}
	if c.Sync.MaxDelay == 0 {
		c.Sync.MaxDelay = time.Minute
	}
}
