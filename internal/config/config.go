package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Compare   CompareConfig   `yaml:"compare" mapstructure:"compare"`
	Scraper   ScraperConfig   `yaml:"scraper" mapstructure:"scraper"`
	Marketing MarketingConfig `yaml:"marketing" mapstructure:"marketing"`
	Campaign  CampaignConfig  `yaml:"campaign" mapstructure:"campaign"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the session database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CompareConfig holds the row-comparison service settings.
type CompareConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ScraperConfig holds the screen-scraper service settings.
type ScraperConfig struct {
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	PollIntervalSecs int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	PollTimeoutSecs  int    `yaml:"poll_timeout_secs" mapstructure:"poll_timeout_secs"`
}

// MarketingConfig holds the marketing service settings.
type MarketingConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CampaignConfig holds the default dispatch behavior. A campaign file
// given on the command line overrides these values.
type CampaignConfig struct {
	File           string  `yaml:"file" mapstructure:"file"`
	Mode           string  `yaml:"mode" mapstructure:"mode"`
	GroupBy        string  `yaml:"group_by" mapstructure:"group_by"`
	SendsPerSecond float64 `yaml:"sends_per_second" mapstructure:"sends_per_second"`
}

// ServerConfig configures the HTTP session server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "outreach.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("compare.base_url", "https://llmmsi.a.pinggy.link/pc-house-automation")
	v.SetDefault("scraper.base_url", "http://llmmsi.a.pinggy.link/house-screenscraper/api")
	v.SetDefault("scraper.poll_interval_secs", 2)
	v.SetDefault("scraper.poll_timeout_secs", 300)
	v.SetDefault("marketing.base_url", "http://llmmsi.a.pinggy.link/marketing")
	v.SetDefault("campaign.mode", "per_record")
	v.SetDefault("campaign.group_by", "id_name")
	v.SetDefault("campaign.sends_per_second", 0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields the given mode requires. Modes correspond to
// command entry points: "run" and "serve" need the full collaborator set,
// "compare" only the comparison service.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkCampaign := func() {
		switch c.Campaign.Mode {
		case "", "per_record", "per_owner":
		default:
			problems = append(problems, "campaign.mode must be per_record or per_owner")
		}
		switch c.Campaign.GroupBy {
		case "", "id_name", "id":
		default:
			problems = append(problems, "campaign.group_by must be id_name or id")
		}
		if c.Campaign.SendsPerSecond < 0 {
			problems = append(problems, "campaign.sends_per_second must be >= 0")
		}
	}
	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				problems = append(problems, "store.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "compare":
		if c.Compare.BaseURL == "" {
			problems = append(problems, "compare.base_url is required")
		}
	case "scrape":
		if c.Scraper.BaseURL == "" {
			problems = append(problems, "scraper.base_url is required")
		}
		checkStore()
	case "notify":
		if c.Marketing.BaseURL == "" {
			problems = append(problems, "marketing.base_url is required")
		}
		checkCampaign()
		checkStore()
	case "run":
		checkCampaign()
		checkStore()
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		checkCampaign()
		checkStore()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
