package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/constraints"
	"gopkg.in/yaml.v3"

	"minesweeper-backend/internal/models"
)

const (
	StatsBackendRedis  = "redis"
	StatsBackendSQLite = "sqlite"
)

type Config struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`

	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	StatsBackend string `yaml:"stats_backend"`
	DBPath       string `yaml:"db_path"`

	Board             models.Configuration `yaml:"board"`
	EndGameOnLastFlag bool                 `yaml:"end_game_on_last_flag"`
	// AdjustFieldToView is only reported to the UI.
	AdjustFieldToView bool          `yaml:"adjust_field_to_view"`
	TickInterval      time.Duration `yaml:"tick_interval"`
	MineSeed          int64         `yaml:"mine_seed"`

	// ActionsPerMinute caps board actions per player, 0 disables the limit.
	ActionsPerMinute int `yaml:"actions_per_minute"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Default() *Config {
	return &Config{
		Port:             "8080",
		Env:              "development",
		RedisURL:         "localhost:6379",
		JWTSecret:        "dev-secret-change-me",
		TokenTTL:         24 * time.Hour,
		StatsBackend:     StatsBackendRedis,
		DBPath:           "minesweeper.db",
		Board:            models.DefaultConfiguration(),
		TickInterval:     time.Second,
		ActionsPerMinute: 240,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_FILE (if any) and finally the environment.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.Env, "ENV")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.RedisPassword, "REDIS_PASSWORD")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.StatsBackend, "STATS_BACKEND")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if preset := os.Getenv("BOARD_PRESET"); preset != "" {
		board, err := models.PresetConfiguration(models.Preset(preset))
		if err != nil {
			return err
		}
		c.Board = board
	}

	var err error
	if c.RedisDB, err = envInt("REDIS_DB", c.RedisDB); err != nil {
		return err
	}
	if c.Board.NumRows, err = envInt("BOARD_ROWS", c.Board.NumRows); err != nil {
		return err
	}
	if c.Board.NumCols, err = envInt("BOARD_COLS", c.Board.NumCols); err != nil {
		return err
	}
	if c.Board.NumMines, err = envInt("BOARD_MINES", c.Board.NumMines); err != nil {
		return err
	}
	if c.MineSeed, err = envInt("MINE_SEED", c.MineSeed); err != nil {
		return err
	}
	if c.ActionsPerMinute, err = envInt("RATE_LIMIT_ACTIONS", c.ActionsPerMinute); err != nil {
		return err
	}

	tickMs, err := envInt("TICK_INTERVAL_MS", c.TickInterval.Milliseconds())
	if err != nil {
		return err
	}
	c.TickInterval = time.Duration(tickMs) * time.Millisecond

	ttlHours, err := envInt("TOKEN_TTL_HOURS", int64(c.TokenTTL/time.Hour))
	if err != nil {
		return err
	}
	c.TokenTTL = time.Duration(ttlHours) * time.Hour

	if c.EndGameOnLastFlag, err = envBool("END_GAME_ON_LAST_FLAG", c.EndGameOnLastFlag); err != nil {
		return err
	}
	if c.AdjustFieldToView, err = envBool("ADJUST_FIELD_TO_VIEW", c.AdjustFieldToView); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Board.Validate(); err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}
	switch c.StatsBackend {
	case StatsBackendRedis, StatsBackendSQLite:
	default:
		return fmt.Errorf("unknown stats backend %q", c.StatsBackend)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", c.TickInterval)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %v", c.TokenTTL)
	}
	if c.ActionsPerMinute < 0 {
		return fmt.Errorf("actions per minute must not be negative, got %d", c.ActionsPerMinute)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.IsProduction() && c.JWTSecret == Default().JWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt[T constraints.Integer](key string, def T) (T, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return T(n), nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
