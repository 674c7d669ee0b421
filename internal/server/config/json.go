package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/lirra/internal/flagx"
	"github.com/dmitrijs2005/lirra/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted. Only
// keys present in the file (non-zero after decoding) override the defaults.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	RemoveBgAPIKey               string         `json:"removebg_api_key"`
	RemoveBgEndpoint             string         `json:"removebg_endpoint"`
	PaymentWebhookSecret         string         `json:"payment_webhook_secret"`
	CORSAllowedOrigins           []string       `json:"cors_allowed_origins"`
	LogLevel                     string         `json:"log_level"`
	LogFile                      string         `json:"log_file"`
	LogMaxSizeMB                 int            `json:"log_max_size_mb"`
	LogMaxBackups                int            `json:"log_max_backups"`
	LogMaxAgeDays                int            `json:"log_max_age_days"`
	RequestTimeout               timex.Duration `json:"request_timeout"`
	ShutdownTimeout              timex.Duration `json:"shutdown_timeout"`
	SessionSweepInterval         timex.Duration `json:"session_sweep_interval"`
}

// parseJson loads the file named by -c/-config (if any) and overlays its
// values on config. Unreadable files or invalid JSON panic.
func parseJson(config *Config, osArgs []string) {
	path := flagx.ConfigFileFlag(osArgs)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RemoveBgAPIKey, c.RemoveBgAPIKey)
	setString(&config.RemoveBgEndpoint, c.RemoveBgEndpoint)
	setString(&config.PaymentWebhookSecret, c.PaymentWebhookSecret)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFile, c.LogFile)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.SessionSweepInterval.Duration > 0 {
		config.SessionSweepInterval = c.SessionSweepInterval.Duration
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.LogMaxSizeMB > 0 {
		config.LogMaxSizeMB = c.LogMaxSizeMB
	}
	if c.LogMaxBackups > 0 {
		config.LogMaxBackups = c.LogMaxBackups
	}
	if c.LogMaxAgeDays > 0 {
		config.LogMaxAgeDays = c.LogMaxAgeDays
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
