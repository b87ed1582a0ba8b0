package config

import "time"

type DNS struct {
	Nameserver    Nameserver    `mapstructure:"nameserver"`
	Cache         bool          `conf:"default:false" mapstructure:"cache"`
	FetchTimeout  time.Duration `conf:"default:1m" mapstructure:"fetch_timeout"`
	LookupTimeout time.Duration `conf:"default:1s" mapstructure:"lookup_timeout"`
}

type Nameserver struct {
	Host  string `conf:"" mapstructure:"host"`
	Port  string `conf:"default:53" mapstructure:"port"`
	Proto string `conf:"default:udp" mapstructure:"proto"`
}
