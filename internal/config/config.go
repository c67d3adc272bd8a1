package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	FrameLimit     string        `mapstructure:"FRAME_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	TLSEnabled     bool          `mapstructure:"TLS_ENABLED"`
	TLSCertFile    string        `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile     string        `mapstructure:"TLS_KEY_FILE"`

	ChartBackend string `mapstructure:"CHART_BACKEND"`
	ChartFormat  string `mapstructure:"CHART_FORMAT"`
	ChartWidth   int    `mapstructure:"CHART_WIDTH"`
	ChartHeight  int    `mapstructure:"CHART_HEIGHT"`
	YearOptions  int    `mapstructure:"YEAR_OPTIONS"`
	// SampleSeed makes sample data reproducible; 0 means random.
	SampleSeed uint64 `mapstructure:"SAMPLE_SEED"`

	ProxyAdminURL       string `mapstructure:"PROXY_ADMIN_URL"`
	ProxyStaffURL       string `mapstructure:"PROXY_STAFF_URL"`
	ProxyRecepPatient   string `mapstructure:"PROXY_RECEP_PATIENT_URL"`
	ProxyRecordsURL     string `mapstructure:"PROXY_RECORDS_URL"`
	ProxyDoctorFetchURL string `mapstructure:"PROXY_DOCTOR_FETCH_URL"`
	ProxyFingerprintURL string `mapstructure:"PROXY_FINGERPRINT_URL"`

	FirebaseAPIKey            string `mapstructure:"FIREBASE_API_KEY"`
	FirebaseAuthDomain        string `mapstructure:"FIREBASE_AUTH_DOMAIN"`
	FirebaseProjectID         string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseStorageBucket     string `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	FirebaseMessagingSenderID string `mapstructure:"FIREBASE_MESSAGING_SENDER_ID"`
	FirebaseAppID             string `mapstructure:"FIREBASE_APP_ID"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT", "FRAME_LIMIT", "REQUEST_TIMEOUT",
	"TLS_ENABLED", "TLS_CERT_FILE", "TLS_KEY_FILE",
	"CHART_BACKEND", "CHART_FORMAT", "CHART_WIDTH", "CHART_HEIGHT", "YEAR_OPTIONS", "SAMPLE_SEED",
	"PROXY_ADMIN_URL", "PROXY_STAFF_URL", "PROXY_RECEP_PATIENT_URL", "PROXY_RECORDS_URL",
	"PROXY_DOCTOR_FETCH_URL", "PROXY_FINGERPRINT_URL",
	"FIREBASE_API_KEY", "FIREBASE_AUTH_DOMAIN", "FIREBASE_PROJECT_ID", "FIREBASE_STORAGE_BUCKET",
	"FIREBASE_MESSAGING_SENDER_ID", "FIREBASE_APP_ID",
}

// Load reads configuration from the environment and an optional .env file in
// the working directory. Environment variables win.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("FRAME_LIMIT", "5M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("CHART_BACKEND", "gochart")
	v.SetDefault("CHART_FORMAT", "svg")
	v.SetDefault("CHART_WIDTH", 800)
	v.SetDefault("CHART_HEIGHT", 400)
	v.SetDefault("YEAR_OPTIONS", 4)
	v.SetDefault("SAMPLE_SEED", 0)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))
	cfg.ChartBackend = strings.ToLower(strings.TrimSpace(cfg.ChartBackend))
	cfg.ChartFormat = strings.ToLower(strings.TrimSpace(cfg.ChartFormat))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ProxyTargets maps each backend path prefix to its configured upstream.
// Prefixes without an upstream are omitted.
func (c *Config) ProxyTargets() map[string]string {
	all := map[string]string{
		"/admin":           c.ProxyAdminURL,
		"/staff":           c.ProxyStaffURL,
		"/recep-patient":   c.ProxyRecepPatient,
		"/records":         c.ProxyRecordsURL,
		"/doctor-fetch":    c.ProxyDoctorFetchURL,
		"/fingerprint-api": c.ProxyFingerprintURL,
	}
	out := make(map[string]string, len(all))
	for prefix, target := range all {
		if target != "" {
			out[prefix] = target
		}
	}
	return out
}

// Validate checks the values Load cannot check by type alone.
func (c *Config) Validate() error {
	switch c.ChartBackend {
	case "gochart", "echarts":
	default:
		return fmt.Errorf("CHART_BACKEND must be \"gochart\" or \"echarts\", got %q", c.ChartBackend)
	}
	switch c.ChartFormat {
	case "svg", "png":
	default:
		return fmt.Errorf("CHART_FORMAT must be \"svg\" or \"png\", got %q", c.ChartFormat)
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("CHART_WIDTH and CHART_HEIGHT must be positive, got %dx%d", c.ChartWidth, c.ChartHeight)
	}
	if c.YearOptions <= 0 {
		return fmt.Errorf("YEAR_OPTIONS must be positive, got %d", c.YearOptions)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	for prefix, target := range c.ProxyTargets() {
		u, err := url.Parse(target)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("proxy target for %s must be an absolute http(s) URL, got %q", prefix, target)
		}
	}

	if c.IsProduction() && c.FirebaseAPIKey == "" {
		return fmt.Errorf("FIREBASE_API_KEY is required in production")
	}

	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}
	return nil
}
