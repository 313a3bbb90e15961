package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the shared configuration object. It is built once at startup and
// handed, read-only, to every hook factory.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Hooks     HooksConfig     `yaml:"hooks"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `yaml:"name" env:"HS_APP_NAME"`
	Version string `yaml:"version" env:"HS_APP_VERSION"`
	Env     string `yaml:"env" env:"HS_APP_ENV"` // dev, test, prod
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"HS_SERVER_HOST"`
	Port            int           `yaml:"port" env:"HS_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HS_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HS_SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HS_SERVER_SHUTDOWN_TIMEOUT"`
	EnableCORS      bool          `yaml:"enable_cors" env:"HS_SERVER_ENABLE_CORS"`
	EnableAdmin     bool          `yaml:"enable_admin" env:"HS_SERVER_ENABLE_ADMIN"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HooksConfig controls the lifecycle orchestrator.
type HooksConfig struct {
	// Timeout bounds every single hook call. Zero disables it.
	Timeout time.Duration `yaml:"timeout" env:"HS_HOOKS_TIMEOUT"`
	// Disabled lists hook names that are dropped at registration.
	Disabled []string `yaml:"disabled" env:"HS_HOOKS_DISABLED"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled" env:"HS_DATABASE_ENABLED"`
	Driver          string        `yaml:"driver" env:"HS_DATABASE_DRIVER"` // mysql, postgres, sqlite
	Host            string        `yaml:"host" env:"HS_DATABASE_HOST"`
	Port            int           `yaml:"port" env:"HS_DATABASE_PORT"`
	Username        string        `yaml:"username" env:"HS_DATABASE_USERNAME"`
	Password        string        `yaml:"password" env:"HS_DATABASE_PASSWORD"`
	Database        string        `yaml:"database" env:"HS_DATABASE_NAME"`
	Charset         string        `yaml:"charset" env:"HS_DATABASE_CHARSET"`
	Path            string        `yaml:"path" env:"HS_DATABASE_PATH"` // sqlite only
	Replicas        []string      `yaml:"replicas" env:"HS_DATABASE_REPLICAS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"HS_DATABASE_MAX_IDLE_CONNS"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"HS_DATABASE_MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"HS_DATABASE_CONN_MAX_LIFETIME"`
	ConnectRetries  int           `yaml:"connect_retries" env:"HS_DATABASE_CONNECT_RETRIES"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" env:"HS_DATABASE_SLOW_THRESHOLD"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled        bool   `yaml:"enabled" env:"HS_REDIS_ENABLED"`
	Host           string `yaml:"host" env:"HS_REDIS_HOST"`
	Port           int    `yaml:"port" env:"HS_REDIS_PORT"`
	Password       string `yaml:"password" env:"HS_REDIS_PASSWORD"`
	DB             int    `yaml:"db" env:"HS_REDIS_DB"`
	PoolSize       int    `yaml:"pool_size" env:"HS_REDIS_POOL_SIZE"`
	ConnectRetries int    `yaml:"connect_retries" env:"HS_REDIS_CONNECT_RETRIES"`
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig holds S3-compatible object storage configuration.
type StorageConfig struct {
	Enabled        bool   `yaml:"enabled" env:"HS_STORAGE_ENABLED"`
	Bucket         string `yaml:"bucket" env:"HS_STORAGE_BUCKET"`
	Region         string `yaml:"region" env:"HS_STORAGE_REGION"`
	Endpoint       string `yaml:"endpoint" env:"HS_STORAGE_ENDPOINT"`
	AccessKey      string `yaml:"access_key" env:"HS_STORAGE_ACCESS_KEY"`
	SecretKey      string `yaml:"secret_key" env:"HS_STORAGE_SECRET_KEY"`
	ForcePathStyle bool   `yaml:"force_path_style" env:"HS_STORAGE_FORCE_PATH_STYLE"`
	CheckBucket    bool   `yaml:"check_bucket" env:"HS_STORAGE_CHECK_BUCKET"`
}

// SchedulerConfig holds background job configuration.
type SchedulerConfig struct {
	Enabled bool `yaml:"enabled" env:"HS_SCHEDULER_ENABLED"`
	// Heartbeat is the interval of the status heartbeat job. Zero disables the job.
	Heartbeat time.Duration `yaml:"heartbeat" env:"HS_SCHEDULER_HEARTBEAT"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" env:"HS_LOG_LEVEL"`   // debug, info, warn, error
	Format     string `yaml:"format" env:"HS_LOG_FORMAT"` // json, console
	Output     string `yaml:"output" env:"HS_LOG_OUTPUT"` // stdout, file, both
	FilePath   string `yaml:"file_path" env:"HS_LOG_FILE_PATH"`
	MaxSize    int    `yaml:"max_size" env:"HS_LOG_MAX_SIZE"` // MB
	MaxBackups int    `yaml:"max_backups" env:"HS_LOG_MAX_BACKUPS"`
	MaxAge     int    `yaml:"max_age" env:"HS_LOG_MAX_AGE"` // days
}

// DefaultConfig returns a Config with default values. Every adapter hook is
// disabled by default so a bare server starts without external services.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "hookserver",
			Version: "0.1.0",
			Env:     "dev",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Hooks: HooksConfig{
			Disabled: []string{},
		},
		Database: DatabaseConfig{
			Driver:          "mysql",
			Host:            "127.0.0.1",
			Port:            3306,
			Charset:         "utf8mb4",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
			ConnectRetries:  3,
			SlowThreshold:   200 * time.Millisecond,
		},
		Redis: RedisConfig{
			Host:           "127.0.0.1",
			Port:           6379,
			PoolSize:       10,
			ConnectRetries: 3,
		},
		Storage: StorageConfig{
			Region: "us-east-1",
		},
		Scheduler: SchedulerConfig{
			Heartbeat: time.Minute,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stdout",
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
		},
	}
}

// Loader handles configuration loading from multiple sources.
type Loader struct {
	configPath string
	cmdArgs    map[string]string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		cmdArgs: make(map[string]string),
	}
}

// WithConfigPath sets the path to the YAML configuration file.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithCmdArgs sets dot-notation overrides, e.g. "server.port" => "9000".
func (l *Loader) WithCmdArgs(args map[string]string) *Loader {
	l.cmdArgs = args
	return l
}

// Load loads configuration from all sources with proper precedence:
// defaults < YAML file < environment variables < command-line overrides
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := applyEnvToStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	for key, value := range l.cmdArgs {
		if err := setConfigValue(cfg, key, value); err != nil {
			return nil, fmt.Errorf("apply override %s: %w", key, err)
		}
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file. A missing file is not an error.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvToStruct recursively applies environment variables to struct fields.
func applyEnvToStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := applyEnvToStruct(field); err != nil {
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
			return fmt.Errorf("set field %s from %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

// setConfigValue sets a configuration value by its yaml dot-notation path.
func setConfigValue(cfg *Config, path, value string) error {
	parts := strings.Split(path, ".")
	v := reflect.ValueOf(cfg).Elem()

	for i, part := range parts {
		field, ok := fieldByYAMLName(v, part)
		if !ok {
			return fmt.Errorf("unknown config path: %s", path)
		}

		if i == len(parts)-1 {
			return setFieldValue(field, value)
		}

		if field.Kind() != reflect.Struct {
			return fmt.Errorf("expected %s to be a struct, got %s", part, field.Kind())
		}
		v = field
	}

	return nil
}

func fieldByYAMLName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("yaml"), ",")[0]
		if tag == name || strings.EqualFold(t.Field(i).Name, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from a string value.
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		field.Set(reflect.ValueOf(out))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// ParseOverrides turns "key=value" pairs into the map accepted by WithCmdArgs.
func ParseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid override %q, expected key=value", pair)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out, nil
}

// IsHookDisabled reports whether name is listed in hooks.disabled.
func (c *Config) IsHookDisabled(name string) bool {
	for _, d := range c.Hooks.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

// LoadFromFile loads configuration from a YAML file path.
func LoadFromFile(path string) (*Config, error) {
	return NewLoader().WithConfigPath(path).Load()
}
