package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	LogFormat      string
	LogLevel       string
	AllowedOrigins []string

	// Anomaly thresholds
	TempMin     float64
	TempMax     float64
	HumidityMin float64
	HumidityMax float64

	IngestKeySalt string

	// Fetcher sources; at most one is used, MQTT first
	MQTTBroker    string
	MQTTTopic     string
	MQTTUsername  string
	MQTTPassword  string
	MQTTClientID  string
	FetchURL      string
	FetchInterval time.Duration

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	RedisAddr     string
	RedisPassword string
	RedisTTL      time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// Sender address; falls back to SMTPUsername
	AlertEmailFrom string
	AlertEmailTo   string
}

// Defaults for values that have neither a flag nor an env variable.
const (
	DefaultPort          = 8000
	DefaultDatabaseType  = "sqlite"
	DefaultDatabaseURL   = "file:safeweb.db?_pragma=busy_timeout(5000)"
	DefaultTempMin       = 0.0
	DefaultTempMax       = 40.0
	DefaultHumidityMin   = 10.0
	DefaultHumidityMax   = 90.0
	DefaultMQTTTopic     = "sensors/+/data"
	DefaultFetchInterval = 30 * time.Second
	DefaultRedisTTL      = 10 * time.Minute
	DefaultSMTPPort      = 587
)

// ParseFlags reads flags, then environment variables (including a .env file
// in the working directory, if any), then defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// A missing .env is normal; real env vars are never overwritten.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("safeweb", flag.ContinueOnError)

	var origins string
	var fetchInterval, redisTTL string
	tempMin := fs.String("temp-min", "", "Minimum normal temperature")
	tempMax := fs.String("temp-max", "", "Maximum normal temperature")
	humMin := fs.String("humidity-min", "", "Minimum normal humidity")
	humMax := fs.String("humidity-max", "", "Maximum normal humidity")

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&origins, "origins", "", "Comma-separated allowed CORS origins")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.IngestKeySalt, "ingest-salt", "", "Device ingest key salt (prefer env)")

	fs.StringVar(&cfg.MQTTBroker, "mqtt-broker", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	fs.StringVar(&cfg.MQTTTopic, "mqtt-topic", "", "MQTT topic filter")
	fs.StringVar(&cfg.FetchURL, "fetch-url", "", "HTTP endpoint polled for readings")
	fs.StringVar(&fetchInterval, "fetch-interval", "", "HTTP poll interval")

	fs.StringVar(&cfg.InfluxURL, "influx-url", "", "InfluxDB URL for the reading mirror")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address for the latest-reading cache")
	fs.StringVar(&redisTTL, "redis-ttl", "", "Latest-reading cache TTL")
	fs.StringVar(&cfg.SMTPHost, "smtp-host", "", "SMTP host for alert email")
	fs.StringVar(&cfg.AlertEmailTo, "alert-email", "", "Alert email recipient")
	fs.StringVar(&cfg.AlertEmailFrom, "alert-email-from", "", "Alert email sender (defaults to SMTP_USERNAME)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	cfg.DatabaseType = firstOf(cfg.DatabaseType, os.Getenv("DATABASE_TYPE"), DefaultDatabaseType)
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
	cfg.DatabaseURL = firstOf(cfg.DatabaseURL, os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultDatabaseURL
	}

	cfg.LogFormat = firstOf(cfg.LogFormat, os.Getenv("LOG_FORMAT"), "text")
	cfg.LogLevel = firstOf(cfg.LogLevel, os.Getenv("LOG_LEVEL"), "info")
	cfg.AllowedOrigins = splitList(firstOf(origins, os.Getenv("ALLOWED_ORIGINS"), "*"))

	var err error
	if cfg.TempMin, err = floatSetting(*tempMin, "TEMP_MIN", DefaultTempMin); err != nil {
		return Config{}, err
	}
	if cfg.TempMax, err = floatSetting(*tempMax, "TEMP_MAX", DefaultTempMax); err != nil {
		return Config{}, err
	}
	if cfg.HumidityMin, err = floatSetting(*humMin, "HUMIDITY_MIN", DefaultHumidityMin); err != nil {
		return Config{}, err
	}
	if cfg.HumidityMax, err = floatSetting(*humMax, "HUMIDITY_MAX", DefaultHumidityMax); err != nil {
		return Config{}, err
	}
	if cfg.TempMin > cfg.TempMax {
		return Config{}, errors.New("temp-min must not exceed temp-max")
	}
	if cfg.HumidityMin > cfg.HumidityMax {
		return Config{}, errors.New("humidity-min must not exceed humidity-max")
	}

	cfg.IngestKeySalt = firstOf(cfg.IngestKeySalt, os.Getenv("INGEST_KEY_SALT"))

	cfg.MQTTBroker = firstOf(cfg.MQTTBroker, os.Getenv("MQTT_BROKER"))
	cfg.MQTTTopic = firstOf(cfg.MQTTTopic, os.Getenv("MQTT_TOPIC"), DefaultMQTTTopic)
	cfg.MQTTUsername = os.Getenv("MQTT_USERNAME")
	cfg.MQTTPassword = os.Getenv("MQTT_PASSWORD")
	cfg.MQTTClientID = os.Getenv("MQTT_CLIENT_ID")
	cfg.FetchURL = firstOf(cfg.FetchURL, os.Getenv("FETCH_URL"))
	if cfg.FetchInterval, err = durationSetting(fetchInterval, "FETCH_INTERVAL", DefaultFetchInterval); err != nil {
		return Config{}, err
	}

	cfg.InfluxURL = firstOf(cfg.InfluxURL, os.Getenv("INFLUXDB_URL"))
	cfg.InfluxToken = os.Getenv("INFLUXDB_TOKEN")
	cfg.InfluxOrg = os.Getenv("INFLUXDB_ORG")
	cfg.InfluxBucket = firstOf(os.Getenv("INFLUXDB_BUCKET"), "sensors")

	cfg.RedisAddr = firstOf(cfg.RedisAddr, os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisTTL, err = durationSetting(redisTTL, "REDIS_TTL", DefaultRedisTTL); err != nil {
		return Config{}, err
	}

	cfg.SMTPHost = firstOf(cfg.SMTPHost, os.Getenv("SMTP_HOST"))
	cfg.SMTPPort = DefaultSMTPPort
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, errors.New("invalid SMTP_PORT env variable")
		}
		cfg.SMTPPort = port
	}
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.AlertEmailTo = firstOf(cfg.AlertEmailTo, os.Getenv("ALERT_EMAIL_TO"))
	cfg.AlertEmailFrom = firstOf(cfg.AlertEmailFrom, os.Getenv("ALERT_EMAIL_FROM"), cfg.SMTPUsername)

	return cfg, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
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

func floatSetting(flagVal, env string, def float64) (float64, error) {
	s := firstOf(flagVal, os.Getenv(env))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", env, s)
	}
	return v, nil
}

func durationSetting(flagVal, env string, def time.Duration) (time.Duration, error) {
	s := firstOf(flagVal, os.Getenv(env))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", env, s)
	}
	return d, nil
}
