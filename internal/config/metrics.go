package config

import "time"

type Metrics struct {
	EndpointName string        `conf:"default:metrics,env:METRICS_ENDPOINT" mapstructure:"endpoint" validate:"required"`
	Host         string        `conf:"default:0.0.0.0:9010,env:METRICS_HOST" mapstructure:"host" validate:"required"`
	Enabled      bool          `conf:"default:false,env:METRICS_ENABLED" mapstructure:"enabled"`
	ReadTimeout  time.Duration `conf:"default:5s" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `conf:"default:5s" mapstructure:"write_timeout"`
}
