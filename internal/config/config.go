package config

import (
	"time"

	"github.com/ardanlabs/conf"
)

type GeoService struct {
	conf.Version
	APIServer `mapstructure:"server"`
	GeoNode   GeoNode  `mapstructure:"geo_node"`
	Subgraph  Subgraph `mapstructure:"subgraph"`
	Metrics   Metrics  `mapstructure:"metrics"`
	DNS       DNS      `mapstructure:"dns"`

	URLNamespace string `conf:"default:subgraphs" mapstructure:"url_namespace" validate:"required"`
	ConfigFile   string `conf:"" mapstructure:"-"`
	LogLevel     string `conf:"default:INFO" mapstructure:"log_level" validate:"oneof=TRACE DEBUG INFO ERROR WARNING"`
	LogFormat    string `conf:"default:TEXT" mapstructure:"log_format" validate:"oneof=TEXT JSON"`
}

type APIServer struct {
	APIHost            string        `conf:"default:http://0.0.0.0:7600,env:URL" mapstructure:"api_host" validate:"required,url"`
	HealthAPIHost      string        `conf:"default:0.0.0.0:9667,env:HEALTH_HOST" mapstructure:"health_host" validate:"required"`
	ReadTimeout        time.Duration `conf:"default:5s" mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `conf:"default:35s" mapstructure:"write_timeout"`
	ReadBufferSize     int           `conf:"default:8192" mapstructure:"read_buffer_size"`
	WriteBufferSize    int           `conf:"default:8192" mapstructure:"write_buffer_size"`
	MaxRequestBodySize int           `conf:"default:4194304" mapstructure:"max_request_body_size"`
	DisableKeepalive   bool          `conf:"default:false" mapstructure:"disable_keepalive"`
	MaxConnsPerIP      int           `conf:"default:0" mapstructure:"max_conns_per_ip"`
	MaxRequestsPerConn int           `conf:"default:0" mapstructure:"max_requests_per_conn"`
}

// GeoNode holds the endpoints of the geo node and the settings of the client
// pools used to reach them.
type GeoNode struct {
	QueryBaseURL string        `conf:"" mapstructure:"query_base_url" validate:"required,url"`
	StatusURL    string        `conf:"" mapstructure:"status_url" validate:"required,url"`
	Timeout      time.Duration `conf:"default:30s" mapstructure:"timeout" validate:"gt=0"`
	UserAgent    string        `conf:"default:geo-service" mapstructure:"user_agent"`

	ClientPoolCapacity  int           `conf:"default:1000" mapstructure:"client_pool_capacity" validate:"gt=0"`
	InsecureConnection  bool          `conf:"default:false" mapstructure:"insecure_connection"`
	RootCA              string        `conf:"" mapstructure:"root_ca"`
	MaxConnsPerHost     int           `conf:"default:512" mapstructure:"max_conns_per_host"`
	ReadTimeout         time.Duration `conf:"default:30s" mapstructure:"read_timeout"`
	WriteTimeout        time.Duration `conf:"default:5s" mapstructure:"write_timeout"`
	DialTimeout         time.Duration `conf:"default:200ms" mapstructure:"dial_timeout"`
	ReadBufferSize      int           `conf:"default:8192" mapstructure:"read_buffer_size"`
	WriteBufferSize     int           `conf:"default:8192" mapstructure:"write_buffer_size"`
	MaxResponseBodySize int           `conf:"default:0" mapstructure:"max_response_body_size"`
}

// Subgraph maps the id the geo node reports in status answers to the id
// clients know the deployment by.
type Subgraph struct {
	Sentinel string `conf:"default:geo" mapstructure:"sentinel" validate:"required"`
	ID       string `conf:"default:QmVfNm8Jok8fFtspmFYYGTo5Sp7BvP3nYr6UHvDrLe6ewp" mapstructure:"id" validate:"required"`
}
