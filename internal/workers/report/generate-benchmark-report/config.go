package generatebenchmarkreport

import (
	"time"

	"rcm-benchmark/internal/common/camunda"
	"rcm-benchmark/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// Deliver forwards every report over the configured channels unless the
	// job variables override it.
	Deliver bool
	// CompleteRetry governs resending the complete command to the broker.
	CompleteRetry camunda.RetryConfig
}

func LoadConfig(wc config.WorkerConfig) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retry := camunda.DefaultRetryConfig
	if wc.MaxRetries > 0 {
		retry.MaxRetries = wc.MaxRetries
	}
	return &Config{
		Timeout:       timeout,
		Deliver:       true,
		CompleteRetry: retry,
	}
}
