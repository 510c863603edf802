package config

import "github.com/caarlos0/env/v11"

// LogConfig selects the game server's log sink. With LOG_FILE unset
// everything goes to stdout; setting it switches to a size-capped file so a
// long-lived table server cannot fill its disk.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	// SampleEvery thins high-frequency entries (countdown ticks, timer
	// fires) to one in N. Zero keeps every entry.
	SampleEvery int `env:"LOG_SAMPLE_EVERY" envDefault:"0"`

	File      string `env:"LOG_FILE"`
	FileMaxMB int    `env:"LOG_FILE_MAX_MB" envDefault:"10"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
