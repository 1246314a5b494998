package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         int `yaml:"port"`
		ReadTimeout  int `yaml:"read_timeout_seconds"`
		WriteTimeout int `yaml:"write_timeout_seconds"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Enabled         bool   `yaml:"enabled"`
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Grid struct {
		BookingStart string `yaml:"booking_start"`
		BookingEnd   string `yaml:"booking_end"`
		EditorStart  string `yaml:"editor_start"`
		EditorEnd    string `yaml:"editor_end"`
	} `yaml:"grid"`

	Reminders struct {
		Enabled              bool    `yaml:"enabled"`
		CheckIntervalMinutes int     `yaml:"check_interval_minutes"`
		DaysBefore           int     `yaml:"days_before"`
		MaxConcurrentSends   int     `yaml:"max_concurrent_sends"`
		SendsPerSecond       float64 `yaml:"sends_per_second"`
		Burst                int     `yaml:"burst"`
	} `yaml:"reminders"`

	Notifications struct {
		GatewayURL    string `yaml:"gateway_url"`
		GatewayAPIKey string `yaml:"gateway_api_key"`
		TelegramToken string `yaml:"telegram_token"`
	} `yaml:"notifications"`

	Stripe struct {
		SecretKey     string `yaml:"secret_key"`
		WebhookSecret string `yaml:"webhook_secret"`
		PriceID       string `yaml:"price_id"`
		SuccessURL    string `yaml:"success_url"`
		CancelURL     string `yaml:"cancel_url"`
		ReturnURL     string `yaml:"return_url"`
	} `yaml:"stripe"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/pawscheduler.db"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ServerPort() int {
	if c.Server.Port <= 0 {
		return 8080
	}
	return c.Server.Port
}

func (c *Config) ServerReadTimeout() time.Duration {
	if c.Server.ReadTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Server.ReadTimeout) * time.Second
}

func (c *Config) ServerWriteTimeout() time.Duration {
	if c.Server.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.WriteTimeout) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// BookingGridBounds returns the clock bounds for the self-service grid.
func (c *Config) BookingGridBounds() (start, end string) {
	start, end = "06:00", "20:45"
	if c.Grid.BookingStart != "" {
		start = c.Grid.BookingStart
	}
	if c.Grid.BookingEnd != "" {
		end = c.Grid.BookingEnd
	}
	return start, end
}

// EditorGridBounds returns the clock bounds for the groomer-facing grid.
func (c *Config) EditorGridBounds() (start, end string) {
	start, end = "06:00", "21:00"
	if c.Grid.EditorStart != "" {
		start = c.Grid.EditorStart
	}
	if c.Grid.EditorEnd != "" {
		end = c.Grid.EditorEnd
	}
	return start, end
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) ReminderCheckInterval() time.Duration {
	if c.Reminders.CheckIntervalMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Reminders.CheckIntervalMinutes) * time.Minute
}
