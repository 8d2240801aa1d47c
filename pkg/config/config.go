// Package config provides the common options of the commands.
package config

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/inertial.go/pkg/acquire"
	"github.com/robotalks/inertial.go/pkg/logsink"
	"github.com/robotalks/inertial.go/pkg/wire"
)

// Config is the configuration of a session with the sensor platform.
type Config struct {
	// LinkURL specifies the transport to the sensor platform.
	// e.g. serial:///dev/rfcomm0?baud=115200, tcp://localhost:7700
	LinkURL string `yaml:"link"`
	// LogPath is the path of the CSV log.
	LogPath string `yaml:"log_path"`
	// Logging selects streaming (and logging) runs instead of polling.
	Logging bool `yaml:"logging"`

	Interval      time.Duration `yaml:"interval"`
	JoinTimeout   time.Duration `yaml:"join_timeout"`
	MinBuffered   int           `yaml:"min_buffered"`
	RefillRequest int           `yaml:"refill_request"`

	// MQTTURL enables publishing samples, e.g. mqtt://localhost:1883/imu/
	MQTTURL string `yaml:"mqtt"`
	// MQTTEncoding is either json or proto.
	MQTTEncoding string `yaml:"mqtt_encoding"`
	// DeviceID names the device in MQTT topics. Default is the machine ID.
	DeviceID string `yaml:"id"`
}

// Encodings of MQTT payloads.
const (
	EncodingJSON  = "json"
	EncodingProto = "proto"
)

var defaultConfig = Config{
	LinkURL:       "serial:///dev/rfcomm0?baud=115200",
	LogPath:       logsink.DefaultFileName,
	Logging:       true,
	Interval:      acquire.DefaultInterval,
	JoinTimeout:   acquire.DefaultJoinTimeout,
	MinBuffered:   wire.DefaultMinBuffered,
	RefillRequest: wire.DefaultRefillRequest,
	MQTTEncoding:  EncodingJSON,
}

var configFile string

func init() {
	loadEnv(&defaultConfig, os.Getenv)
	configFile = os.Getenv("IMU_CONFIG")
}

func loadEnv(c *Config, getenv func(string) string) {
	if val := getenv("IMU_LINK"); val != "" {
		c.LinkURL = val
	}
	if val := getenv("IMU_LOG"); val != "" {
		c.LogPath = val
	}
	if val := getenv("IMU_LOGGING"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Logging = enabled
		}
	}
	if val := getenv("IMU_MQTT_URL"); val != "" {
		c.MQTTURL = val
	}
	if val := getenv("IMU_ID"); val != "" {
		c.DeviceID = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "YAML config file, loaded before flags are applied.")
	flag.StringVar(&defaultConfig.LinkURL, "link", defaultConfig.LinkURL, "Link URL of the sensor platform.")
	flag.StringVar(&defaultConfig.LogPath, "log", defaultConfig.LogPath, "Path of the CSV log.")
	flag.BoolVar(&defaultConfig.Logging, "logging", defaultConfig.Logging, "Stream and log samples, otherwise poll.")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Acquisition and display interval.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL for publishing samples.")
	flag.StringVar(&defaultConfig.MQTTEncoding, "mqtt-encoding", defaultConfig.MQTTEncoding, "MQTT payload encoding: json or proto.")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID in MQTT topics.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
// If a config file is specified, it's loaded and flags explicitly set on
// the command line take precedence.
// The result is validated and normalized.
func NewConfig() (*Config, error) {
	conf := defaultConfig
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			return nil, err
		}
		if flag.Parsed() {
			flag.Visit(func(f *flag.Flag) {
				conf.applyFlag(f.Name)
			})
		}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	conf.Normalize()
	return &conf, nil
}

// MustNewConfig creates a Config and fails on error.
func MustNewConfig() *Config {
	conf, err := NewConfig()
	if err != nil {
		log.Fatalln(err)
	}
	return conf
}

func (c *Config) applyFlag(name string) {
	switch name {
	case "link":
		c.LinkURL = defaultConfig.LinkURL
	case "log":
		c.LogPath = defaultConfig.LogPath
	case "logging":
		c.Logging = defaultConfig.Logging
	case "interval":
		c.Interval = defaultConfig.Interval
	case "mqtt":
		c.MQTTURL = defaultConfig.MQTTURL
	case "mqtt-encoding":
		c.MQTTEncoding = defaultConfig.MQTTEncoding
	case "id":
		c.DeviceID = defaultConfig.DeviceID
	}
}

// LoadFile loads YAML from path on top of current values.
func (c *Config) LoadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.Load(content)
}

// Load loads YAML content on top of current values.
func (c *Config) Load(content []byte) error {
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate checks the configuration. It doesn't change anything.
func (c *Config) Validate() error {
	if c.LinkURL == "" {
		return fmt.Errorf("link URL is required")
	}
	if _, err := url.Parse(c.LinkURL); err != nil {
		return fmt.Errorf("invalid link URL: %w", err)
	}
	if c.Interval < 0 || c.JoinTimeout < 0 {
		return fmt.Errorf("interval and join timeout must not be negative")
	}
	if c.MinBuffered < 0 || c.RefillRequest < 0 {
		return fmt.Errorf("buffering sizes must not be negative")
	}
	if c.MinBuffered > 0 && c.RefillRequest > 0 && c.RefillRequest < c.MinBuffered {
		return fmt.Errorf("refill request %d is smaller than min buffered %d", c.RefillRequest, c.MinBuffered)
	}
	switch c.MQTTEncoding {
	case "", EncodingJSON, EncodingProto:
	default:
		return fmt.Errorf("unknown MQTT encoding %q", c.MQTTEncoding)
	}
	if c.MQTTURL != "" {
		if _, err := url.Parse(c.MQTTURL); err != nil {
			return fmt.Errorf("invalid MQTT URL: %w", err)
		}
	}
	return nil
}

// Normalize fills zero values with defaults. It's called after Validate.
func (c *Config) Normalize() {
	if c.LogPath == "" {
		c.LogPath = logsink.DefaultFileName
	}
	if c.Interval == 0 {
		c.Interval = acquire.DefaultInterval
	}
	if c.JoinTimeout == 0 {
		c.JoinTimeout = acquire.DefaultJoinTimeout
	}
	if c.MinBuffered == 0 {
		c.MinBuffered = wire.DefaultMinBuffered
	}
	if c.RefillRequest == 0 {
		c.RefillRequest = wire.DefaultRefillRequest
	}
	if c.MQTTEncoding == "" {
		c.MQTTEncoding = EncodingJSON
	}
}

// Refill returns the buffering strategy.
func (c *Config) Refill() wire.Refill {
	return wire.Refill{Min: c.MinBuffered, Request: c.RefillRequest}
}

// Apply applies the acquisition options on a.
func (c *Config) Apply(a *acquire.Acquisition) {
	a.Interval = c.Interval
	a.JoinTimeout = c.JoinTimeout
	a.Refill = c.Refill()
	a.SetLogging(c.Logging)
}
