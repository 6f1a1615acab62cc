package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MQTTConfig configures the optional broker publisher.
type MQTTConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Broker          string        `yaml:"broker"`
	Port            int           `yaml:"port"`
	ClientID        string        `yaml:"client_id"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	TopicPrefix     string        `yaml:"topic_prefix"`
	QoS             int           `yaml:"qos"`
	Retain          bool          `yaml:"retain"`
	PublishInterval time.Duration `yaml:"publish_interval"`
}

// Config holds all application configuration.
type Config struct {
	Interface      string        `yaml:"interface"`
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MockMode       bool          `yaml:"mock"`
	MockScenario   string        `yaml:"mock_scenario"`
	MockSeed       int64         `yaml:"mock_seed"`
	TickInterval   time.Duration `yaml:"tick_interval"`
	ScanInterval   time.Duration `yaml:"scan_interval"`
	StaleWindow    time.Duration `yaml:"stale_window"`
	HistoryCap     int           `yaml:"history_cap"`
	AutoStart      bool          `yaml:"auto_start"`
	Debug          bool          `yaml:"debug"`
	Tracing        bool          `yaml:"tracing"`
	TraceRatio     float64       `yaml:"trace_ratio"` // Fraction of traces kept, 0 keeps all
	MQTT           MQTTConfig    `yaml:"mqtt"`

	// File is the YAML file that was applied, if any.
	File string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:         ":8080",
		MockScenario: "basic",
		MockSeed:     1,
		TickInterval: time.Second,
		ScanInterval: 3 * time.Second,
		StaleWindow:  5 * time.Minute,
		HistoryCap:   150,
		AutoStart:    true,
		MQTT: MQTTConfig{
			Broker:          "localhost",
			Port:            1883,
			ClientID:        "wbands",
			TopicPrefix:     "wbands",
			QoS:             1,
			PublishInterval: time.Minute,
		},
	}
}

// Load builds the configuration from, in increasing precedence: defaults,
// the YAML file named by -config or WBANDS_CONFIG, WBANDS_* environment
// variables and command line flags.
func Load(args []string) (*Config, error) {
	cfg := Default()

	path := configPath(args)
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	fs := flag.NewFlagSet("wbands", flag.ContinueOnError)
	fs.String("config", path, "Path to YAML configuration file")
	fs.StringVar(&cfg.Interface, "i", cfg.Interface, "Wireless interface to scan with (empty picks the first managed one)")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fs.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Run in mock mode (simulated networks)")
	fs.StringVar(&cfg.MockScenario, "mock-scenario", cfg.MockScenario, "Mock scenario: basic or crowded")
	fs.Int64Var(&cfg.MockSeed, "mock-seed", cfg.MockSeed, "Mock random seed")
	fs.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "Poll tick interval")
	fs.DurationVar(&cfg.ScanInterval, "scan-interval", cfg.ScanInterval, "Minimum time between hardware scans")
	fs.DurationVar(&cfg.StaleWindow, "stale", cfg.StaleWindow, "How long a vanished network keeps its first-seen time")
	fs.IntVar(&cfg.HistoryCap, "history", cfg.HistoryCap, "Signal history points kept per network")
	fs.BoolVar(&cfg.AutoStart, "autostart", cfg.AutoStart, "Start scanning at launch")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	fs.BoolVar(&cfg.Tracing, "trace", cfg.Tracing, "Export OpenTelemetry traces to stderr")
	fs.Float64Var(&cfg.TraceRatio, "trace-ratio", cfg.TraceRatio, "Fraction of traces to sample (0 keeps all)")
	fs.BoolVar(&cfg.MQTT.Enabled, "mqtt", cfg.MQTT.Enabled, "Publish to an MQTT broker")
	fs.StringVar(&cfg.MQTT.Broker, "mqtt-broker", cfg.MQTT.Broker, "MQTT broker host")
	fs.IntVar(&cfg.MQTT.Port, "mqtt-port", cfg.MQTT.Port, "MQTT broker port")
	fs.StringVar(&cfg.MQTT.TopicPrefix, "mqtt-prefix", cfg.MQTT.TopicPrefix, "MQTT topic prefix")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPath finds -config in args without parsing the rest, so the file can
// be applied before flags.
func configPath(args []string) string {
	for i, a := range args {
		name := strings.TrimLeft(a, "-")
		if a == name {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return getEnv("WBANDS_CONFIG", "")
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.File = path
	return nil
}

func (c *Config) applyEnv() {
	c.Interface = getEnv("WBANDS_INTERFACE", c.Interface)
	c.Addr = getEnv("WBANDS_ADDR", c.Addr)
	if origins := getEnv("WBANDS_ALLOWED_ORIGINS", ""); origins != "" {
		c.AllowedOrigins = parseList(origins)
	}
	c.MockMode = getEnvBool("WBANDS_MOCK", c.MockMode)
	c.MockScenario = getEnv("WBANDS_MOCK_SCENARIO", c.MockScenario)
	c.MockSeed = int64(getEnvInt("WBANDS_MOCK_SEED", int(c.MockSeed)))
	c.TickInterval = getEnvDuration("WBANDS_TICK", c.TickInterval)
	c.ScanInterval = getEnvDuration("WBANDS_SCAN_INTERVAL", c.ScanInterval)
	c.StaleWindow = getEnvDuration("WBANDS_STALE", c.StaleWindow)
	c.HistoryCap = getEnvInt("WBANDS_HISTORY", c.HistoryCap)
	c.AutoStart = getEnvBool("WBANDS_AUTOSTART", c.AutoStart)
	c.Debug = getEnvBool("WBANDS_DEBUG", c.Debug)
	c.Tracing = getEnvBool("WBANDS_TRACE", c.Tracing)
	c.TraceRatio = getEnvFloat("WBANDS_TRACE_RATIO", c.TraceRatio)

	c.MQTT.Enabled = getEnvBool("WBANDS_MQTT", c.MQTT.Enabled)
	c.MQTT.Broker = getEnv("WBANDS_MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.Port = getEnvInt("WBANDS_MQTT_PORT", c.MQTT.Port)
	c.MQTT.ClientID = getEnv("WBANDS_MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.Username = getEnv("WBANDS_MQTT_USERNAME", c.MQTT.Username)
	c.MQTT.Password = getEnv("WBANDS_MQTT_PASSWORD", c.MQTT.Password)
	c.MQTT.TopicPrefix = getEnv("WBANDS_MQTT_PREFIX", c.MQTT.TopicPrefix)
	c.MQTT.QoS = getEnvInt("WBANDS_MQTT_QOS", c.MQTT.QoS)
	c.MQTT.PublishInterval = getEnvDuration("WBANDS_MQTT_INTERVAL", c.MQTT.PublishInterval)
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %s", c.TickInterval))
	}
	if c.ScanInterval < c.TickInterval {
		errs = append(errs, fmt.Errorf("scan interval %s is shorter than tick %s", c.ScanInterval, c.TickInterval))
	}
	if c.StaleWindow <= 0 {
		errs = append(errs, fmt.Errorf("stale window must be positive, got %s", c.StaleWindow))
	}
	if c.HistoryCap <= 0 {
		errs = append(errs, fmt.Errorf("history cap must be positive, got %d", c.HistoryCap))
	}
	if c.TraceRatio < 0 || c.TraceRatio > 1 {
		errs = append(errs, fmt.Errorf("trace ratio must be within [0,1], got %g", c.TraceRatio))
	}
	if c.MockMode && c.MockScenario != "basic" && c.MockScenario != "crowded" {
		errs = append(errs, fmt.Errorf("unknown mock scenario %q", c.MockScenario))
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("mqtt broker must not be empty"))
		}
		if c.MQTT.Port <= 0 || c.MQTT.Port > 65535 {
			errs = append(errs, fmt.Errorf("mqtt port out of range: %d", c.MQTT.Port))
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.MQTT.QoS))
		}
	}
	return errors.Join(errs...)
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
