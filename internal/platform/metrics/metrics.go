package metrics

import (
	"time"
)

type Metrics interface {
	IncErrorTypeCounter(kind string, deployment string)
	IncHTTPRequestStat(start time.Time, deployment string, statusCode int)
}
