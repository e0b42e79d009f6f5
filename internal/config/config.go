package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all user-facing configuration for geomsg.
type Config struct {
	Data     DataConfig     `toml:"data"`
	Server   ServerConfig   `toml:"server"`
	Generate GenerateConfig `toml:"generate"`
	Overpass OverpassConfig `toml:"overpass"`
}

type DataConfig struct {
	Dir string `toml:"dir"`
}

type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

type GenerateConfig struct {
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

type OverpassConfig struct {
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Data:     DataConfig{Dir: "data"},
		Server:   ServerConfig{Host: "localhost", Port: 8080, RateLimit: 5.0, Burst: 10},
		Generate: GenerateConfig{Model: "gemini-2.5-flash", Temperature: 0.5, MaxTokens: 520},
		Overpass: OverpassConfig{Endpoint: "https://overpass-api.de/api/interpreter", TimeoutSeconds: 30},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
