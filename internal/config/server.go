package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	TurnTimeoutSec      int `env:"TURN_TIMEOUT_SECONDS" envDefault:"30"`
	DisconnectGraceSec  int `env:"DISCONNECT_GRACE_SECONDS" envDefault:"900"`
	AbandonedDeleteMins int `env:"ABANDONED_DELETE_MINUTES" envDefault:"15"`
	SoloDeleteMins      int `env:"SOLO_DELETE_MINUTES" envDefault:"5"`
	SeatClaimTTLSec     int `env:"SEAT_CLAIM_TTL_SECONDS" envDefault:"5"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
