package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/brieflyhq/briefly/models"
)

// CategoryMapping ties an upstream API category slug to the label articles
// are filed under locally.
type CategoryMapping struct {
	Slug  string          `mapstructure:"slug"`
	Label models.Category `mapstructure:"label"`
}

type Config struct {
	App struct {
		Name string `mapstructure:"name"`
		Port string `mapstructure:"port"`
	} `mapstructure:"app"`
	Database struct {
		Host         string `mapstructure:"host"`
		Port         string `mapstructure:"port"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		Name         string `mapstructure:"name"`
		Sslmode      string `mapstructure:"sslmode"`
		Timezone     string `mapstructure:"timezone"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
	} `mapstructure:"database"`
	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	NewsAPI struct {
		BaseURL    string            `mapstructure:"base_url"`
		APIKey     string            `mapstructure:"api_key"`
		PageSize   int               `mapstructure:"page_size"`
		Timeout    time.Duration     `mapstructure:"timeout"`
		Categories []CategoryMapping `mapstructure:"categories"`
	} `mapstructure:"newsapi"`
	Summarizer struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"summarizer"`
	Distiller struct {
		BatchSize int `mapstructure:"batch_size"`
	} `mapstructure:"distiller"`
}

// Load reads config/config.yaml and applies environment overrides. The
// NewsAPI key is normally supplied via NEWS_API_KEY rather than the file.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")

	viper.SetDefault("app.port", ":8080")
	viper.SetDefault("newsapi.base_url", "https://newsapi.org/v2/top-headlines")
	viper.SetDefault("newsapi.page_size", 10)
	viper.SetDefault("newsapi.timeout", 15*time.Second)
	viper.SetDefault("summarizer.timeout", 10*time.Second)
	viper.SetDefault("distiller.batch_size", 20)

	if err := viper.BindEnv("newsapi.api_key", "NEWS_API_KEY"); err != nil {
		return nil, err
	}
	if err := viper.BindEnv("summarizer.url", "SUMMARIZER_URL"); err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.NewsAPI.Categories) == 0 {
		cfg.NewsAPI.Categories = DefaultCategories()
	}
	return cfg, nil
}

// DefaultCategories covers the three sections the service launched with.
func DefaultCategories() []CategoryMapping {
	return []CategoryMapping{
		{Slug: "technology", Label: models.CategoryTech},
		{Slug: "business", Label: models.CategoryFinance},
		{Slug: "science", Label: models.CategoryScience},
	}
}
