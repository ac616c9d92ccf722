package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mantonx/moviecatalog/internal/logger"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Uploaded images (posters, shots, portraits)
	Media MediaConfig `yaml:"media" json:"media"`

	// Admin site configuration
	Admin AdminConfig `yaml:"admin" json:"admin"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host           string        `yaml:"host" json:"host" env:"MOVIECATALOG_HOST" default:"0.0.0.0"`
	Port           int           `yaml:"port" json:"port" env:"MOVIECATALOG_PORT" default:"8080"`
	Mode           string        `yaml:"mode" json:"mode" env:"GIN_MODE" default:"release"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"read_timeout" env:"MOVIECATALOG_READ_TIMEOUT" default:"30s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" json:"write_timeout" env:"MOVIECATALOG_WRITE_TIMEOUT" default:"30s"`
	MaxHeaderBytes int           `yaml:"max_header_bytes" json:"max_header_bytes" env:"MOVIECATALOG_MAX_HEADER_BYTES" default:"1048576"`
	EnableCORS     bool          `yaml:"enable_cors" json:"enable_cors" env:"MOVIECATALOG_ENABLE_CORS" default:"true"`
	TrustedProxies []string      `yaml:"trusted_proxies" json:"trusted_proxies" env:"MOVIECATALOG_TRUSTED_PROXIES"`
}

// DatabaseConfig selects and tunes the catalog store
type DatabaseConfig struct {
	Type            string        `yaml:"type" json:"type" env:"DATABASE_TYPE" default:"sqlite"`
	URL             string        `yaml:"url" json:"url" env:"DATABASE_URL"`
	Host            string        `yaml:"host" json:"host" env:"POSTGRES_HOST" default:"localhost"`
	Port            int           `yaml:"port" json:"port" env:"POSTGRES_PORT" default:"5432"`
	Username        string        `yaml:"username" json:"username" env:"POSTGRES_USER" default:"moviecatalog"`
	Password        string        `yaml:"password" json:"-" env:"POSTGRES_PASSWORD"`
	Database        string        `yaml:"database" json:"database" env:"POSTGRES_DB" default:"moviecatalog"`
	DataDir         string        `yaml:"data_dir" json:"data_dir" env:"MOVIECATALOG_DATA_DIR" default:"./data"`
	DatabasePath    string        `yaml:"database_path" json:"database_path" env:"MOVIECATALOG_DATABASE_PATH"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns" env:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" default:"2h"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" json:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME" default:"30m"`
	LogQueries      bool          `yaml:"log_queries" json:"log_queries" env:"DB_LOG_QUERIES" default:"false"`
}

// MediaConfig configures the local file storage for uploaded images
type MediaConfig struct {
	Root          string `yaml:"root" json:"root" env:"MOVIECATALOG_MEDIA_ROOT"`
	URLPrefix     string `yaml:"url_prefix" json:"url_prefix" env:"MOVIECATALOG_MEDIA_URL" default:"/media/"`
	MaxUploadSize int64  `yaml:"max_upload_size" json:"max_upload_size" env:"MOVIECATALOG_MAX_UPLOAD_SIZE" default:"10485760"`
}

// AdminConfig holds the admin site identity and the operators allowed to use it
type AdminConfig struct {
	Enabled    bool       `yaml:"enabled" json:"enabled" env:"MOVIECATALOG_ADMIN_ENABLED" default:"true"`
	SiteTitle  string     `yaml:"site_title" json:"site_title" env:"MOVIECATALOG_ADMIN_TITLE" default:"Django Movies"`
	SiteHeader string     `yaml:"site_header" json:"site_header" env:"MOVIECATALOG_ADMIN_HEADER" default:"Django Movies"`
	Operators  []Operator `yaml:"operators" json:"-"`
}

// Operator is a staff member identified by a static bearer token. Permissions
// use the "<model>.<action>" form, e.g. "movie.change"; "*" grants everything.
type Operator struct {
	Name        string   `yaml:"name" json:"name"`
	Token       string   `yaml:"token" json:"-"`
	Permissions []string `yaml:"permissions" json:"permissions"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"MOVIECATALOG_LOG_LEVEL" default:"info"`
	Format string `yaml:"format" json:"format" env:"MOVIECATALOG_LOG_FORMAT" default:"text"`
}

// ConfigManager manages application configuration
type ConfigManager struct {
	config     *Config
	configPath string
	mu         sync.RWMutex
}

var (
	globalConfigManager *ConfigManager
	configOnce          sync.Once
)

// GetConfigManager returns the global configuration manager instance
func GetConfigManager() *ConfigManager {
	configOnce.Do(func() {
		globalConfigManager = NewConfigManager()
	})
	return globalConfigManager
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() *ConfigManager {
	cfg := DefaultConfig()
	applyDerivedConfig(cfg)
	return &ConfigManager{config: cfg}
}

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			Mode:           "release",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1MB
			EnableCORS:     true,
			TrustedProxies: []string{},
		},
		Database: DatabaseConfig{
			Type:            "sqlite",
			Host:            "localhost",
			Port:            5432,
			Username:        "moviecatalog",
			Database:        "moviecatalog",
			DataDir:         "./data",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 2 * time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
		},
		Media: MediaConfig{
			URLPrefix:     "/media/",
			MaxUploadSize: 10 << 20,
		},
		Admin: AdminConfig{
			Enabled:    true,
			SiteTitle:  "Django Movies",
			SiteHeader: "Django Movies",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from file and environment variables.
// Precedence: environment, then file, then defaults.
func (cm *ConfigManager) LoadConfig(configPath string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	newConfig := DefaultConfig()

	if configPath != "" {
		if !fileExists(configPath) {
			return fmt.Errorf("config file not found: %s", configPath)
		}
		if err := loadFromFile(configPath, newConfig); err != nil {
			return fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := loadStructFromEnv(reflect.ValueOf(newConfig).Elem()); err != nil {
		return fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := validateConfig(newConfig); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDerivedConfig(newConfig)

	cm.config = newConfig
	cm.configPath = configPath
	return nil
}

// GetConfig returns a copy of the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	configCopy := *cm.config
	return &configCopy
}

// ConfigPath returns the file the configuration was loaded from, if any
func (cm *ConfigManager) ConfigPath() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

func loadFromFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	case ".json":
		return json.Unmarshal(data, config)
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
}

// loadStructFromEnv overrides fields tagged with `env` from the environment.
// Defaults are already populated by DefaultConfig, so the `default` tag is
// documentation only here and never clobbers file values.
func loadStructFromEnv(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := loadStructFromEnv(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envValue, ok := os.LookupEnv(envTag)
		if !ok || envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set field %s from %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(duration))
		} else {
			intVal, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(intVal)
		}
	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolVal)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %v", field.Type())
		}
		values := strings.Split(value, ",")
		for i, v := range values {
			values[i] = strings.TrimSpace(v)
		}
		field.Set(reflect.ValueOf(values))
	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

func validateConfig(config *Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Type != "sqlite" && config.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database type: %s", config.Database.Type)
	}

	if config.Media.MaxUploadSize <= 0 {
		return fmt.Errorf("invalid max upload size: %d", config.Media.MaxUploadSize)
	}

	seen := make(map[string]string, len(config.Admin.Operators))
	for _, op := range config.Admin.Operators {
		if op.Token == "" {
			return fmt.Errorf("operator %q has no token", op.Name)
		}
		if other, ok := seen[op.Token]; ok {
			return fmt.Errorf("operators %q and %q share a token", other, op.Name)
		}
		seen[op.Token] = op.Name
	}

	return nil
}

func applyDerivedConfig(config *Config) {
	if config.Database.DatabasePath == "" && config.Database.Type == "sqlite" {
		config.Database.DatabasePath = filepath.Join(config.Database.DataDir, "moviecatalog.db")
	}

	if config.Media.Root == "" {
		config.Media.Root = filepath.Join(config.Database.DataDir, "media")
	}

	if !strings.HasSuffix(config.Media.URLPrefix, "/") {
		config.Media.URLPrefix += "/"
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Get returns the current global configuration
func Get() *Config {
	return GetConfigManager().GetConfig()
}

// Load loads configuration from the specified path
func Load(configPath string) error {
	if err := GetConfigManager().LoadConfig(configPath); err != nil {
		return err
	}
	logger.Info("configuration loaded", "path", configPath)
	return nil
}
