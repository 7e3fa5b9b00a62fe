package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Sensor driver names accepted by SENSOR_DRIVER.
const (
	DriverSimulated = "simulated"
	DriverPostgres  = "postgres"
	DriverMQTT      = "mqtt"
)

// Config holds environment-driven settings for the climate controller.
type Config struct {
	Port               int
	TempThreshold      float64
	HumidThreshold     float64
	PollInterval       time.Duration
	SensorDriver       string
	SensorTimeout      time.Duration
	DatabaseURL        string
	SensorTable        string
	MQTTBrokerURL      string
	MQTTTopic          string
	MQTTClientID       string
	MQTTMaxAge         time.Duration
	CORSAllowedOrigins []string
	LegacyListenAddr   string
	JSONValidFlag      bool
	LogLevel           slog.Level
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:               8080,
		TempThreshold:      30.0,
		HumidThreshold:     70.0,
		PollInterval:       2 * time.Second,
		SensorDriver:       DriverSimulated,
		SensorTimeout:      2 * time.Second,
		SensorTable:        "climate_readings",
		MQTTBrokerURL:      "tcp://localhost:1883",
		MQTTTopic:          "sensors/readings",
		MQTTClientID:       "climate-controller",
		MQTTMaxAge:         30 * time.Second,
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           slog.LevelInfo,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("CONTROLLER_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid CONTROLLER_PORT: %s", portStr)
		}
	}

	var err error
	if cfg.TempThreshold, err = floatEnv("TEMP_THRESHOLD", cfg.TempThreshold); err != nil {
		return cfg, err
	}
	if cfg.HumidThreshold, err = floatEnv("HUMID_THRESHOLD", cfg.HumidThreshold); err != nil {
		return cfg, err
	}
	if cfg.PollInterval, err = durationEnv("POLL_INTERVAL", cfg.PollInterval); err != nil {
		return cfg, err
	}
	if cfg.SensorTimeout, err = durationEnv("SENSOR_TIMEOUT", cfg.SensorTimeout); err != nil {
		return cfg, err
	}
	if cfg.MQTTMaxAge, err = durationEnv("MQTT_MAX_AGE", cfg.MQTTMaxAge); err != nil {
		return cfg, err
	}

	if driver := os.Getenv("SENSOR_DRIVER"); driver != "" {
		cfg.SensorDriver = strings.ToLower(strings.TrimSpace(driver))
	}
	switch cfg.SensorDriver {
	case DriverSimulated, DriverMQTT:
	case DriverPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required when SENSOR_DRIVER=%s", DriverPostgres)
		}
	default:
		return cfg, fmt.Errorf("invalid SENSOR_DRIVER: %s", cfg.SensorDriver)
	}

	if table := os.Getenv("SENSOR_TABLE"); table != "" {
		cfg.SensorTable = table
	}
	if broker := os.Getenv("MQTT_BROKER_URL"); broker != "" {
		cfg.MQTTBrokerURL = broker
	}
	if topic := os.Getenv("MQTT_TOPIC"); topic != "" {
		cfg.MQTTTopic = topic
	}
	if clientID := os.Getenv("MQTT_CLIENT_ID"); clientID != "" {
		cfg.MQTTClientID = clientID
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = splitList(origins)
	}

	cfg.LegacyListenAddr = os.Getenv("LEGACY_LISTEN_ADDR")

	if flagStr := os.Getenv("JSON_VALID_FLAG"); flagStr != "" {
		flag, err := strconv.ParseBool(flagStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid JSON_VALID_FLAG: %w", err)
		}
		cfg.JSONValidFlag = flag
	}

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(levelStr)); err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func floatEnv(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < 0 {
		return def, fmt.Errorf("invalid %s: negative duration %s", key, raw)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
