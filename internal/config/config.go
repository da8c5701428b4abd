package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	defaultAddress  = ":4001"
	defaultCurrency = "R"
	defaultRule     = "count > 1"
)

// Config mirrors config/catalog.yaml.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Business Business        `yaml:"business"`
	Pricing  Pricing         `yaml:"pricing"`
	Services []Service       `yaml:"services"`
	Addons   []Addon         `yaml:"addons"`
	Urgency  []Urgency       `yaml:"urgency"`
	Features map[string]bool `yaml:"features"`
}

type Business struct {
	Name    string `yaml:"name"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
	Website string `yaml:"website"`
}

type Pricing struct {
	Currency  string `yaml:"currency"`
	Discounts struct {
		MultipleServices float64 `yaml:"multiple_services"`
		Rule             string  `yaml:"rule"`
	} `yaml:"discounts"`
}

// Service is a catalog entry. Price holds either a number or a label such as
// "Custom Quote".
type Service struct {
	ID            string      `yaml:"id"`
	Title         string      `yaml:"title"`
	Price         interface{} `yaml:"price"`
	Description   string      `yaml:"description"`
	PriceNote     string      `yaml:"price_note"`
	Features      []string    `yaml:"features"`
	Category      string      `yaml:"category"`
	EstimatedTime string      `yaml:"estimated_time"`
	Popularity    string      `yaml:"popularity"`
}

type Addon struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Price       int    `yaml:"price"`
	Description string `yaml:"description"`
	Note        string `yaml:"note"`
}

type Urgency struct {
	ID      string `yaml:"id"`
	Label   string `yaml:"label"`
	Icon    string `yaml:"icon"`
	Default bool   `yaml:"default"`
}

// LoadConfig reads and parses the catalog file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config file %s", path)
	}
	return Parse(data)
}

// Parse decodes catalog YAML and applies defaults.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config data")
	}

	if strings.TrimSpace(cfg.Server.Address) == "" {
		cfg.Server.Address = defaultAddress
	}
	if strings.TrimSpace(cfg.Pricing.Currency) == "" {
		cfg.Pricing.Currency = defaultCurrency
	}
	if strings.TrimSpace(cfg.Pricing.Discounts.Rule) == "" {
		cfg.Pricing.Discounts.Rule = defaultRule
	}
	if cfg.Features == nil {
		cfg.Features = map[string]bool{}
	}
	return cfg, nil
}
