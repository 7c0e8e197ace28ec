package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicPose   string
	TopicIMU    string
	TopicStatus string
	TopicEnv    string

	// BNO055 hardware
	BNOTransport    string // "i2c" or "uart"
	BNOI2CBus       string // periph bus name, "" = first available
	BNOI2CAddr      uint16
	BNOSCLPin       string // optional, "" = leave pin muxing to the kernel
	BNOSDAPin       string
	BNOBusSpeedHz   int64
	BNOUARTPort     string
	BNOUARTBaud     uint
	BNOTxTimeoutMS  int
	BNOResetTimeout int // milliseconds, 0 = wait forever

	// Optional BMP280 on the same bus, 0 = not fitted
	BMPI2CAddr uint16

	// Timing
	SampleInterval     int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int    // milliseconds
	DisplayContent        string // "orientation" or "status"

	// Register debug tool, e.g. "0x3D-0x3F,0x07". Empty refuses all writes.
	RegisterDebugAllowedRanges string
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot modify config without locking.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock for initialization,
//     read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional value filled in.
func Default() *Config {
	return &Config{
		MQTTClientIDProducer: "orientation-producer",
		MQTTClientIDConsole:  "orientation-console",
		MQTTClientIDWeb:      "orientation-web",
		MQTTClientIDDisplay:  "orientation-display",

		TopicPose:   "orientation/pose",
		TopicIMU:    "orientation/imu",
		TopicStatus: "orientation/status",
		TopicEnv:    "orientation/env",

		BNOTransport:   "i2c",
		BNOI2CAddr:     0x28,
		BNOBusSpeedHz:  100000,
		BNOUARTPort:    "/dev/serial0",
		BNOUARTBaud:    115200,
		BNOTxTimeoutMS: 4,

		WebServerPort: 8080,

		DisplayUpdateInterval: 200,
		DisplayContent:        "orientation",
	}
}

// Load reads the configuration file and returns a Config struct.
// Files ending in .yaml or .yml are parsed as YAML with the same keys in
// lower case; anything else is KEY=VALUE lines.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		var raw map[string]interface{}
		if err := yaml.NewDecoder(file).Decode(&raw); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		for key, value := range raw {
			if err := cfg.setValue(strings.ToUpper(key), fmt.Sprint(value)); err != nil {
				return nil, fmt.Errorf("config key %s: %w", key, err)
			}
		}
	default:
		scanner := bufio.NewScanner(file)
		lineNum := 0

		for scanner.Scan() {
			lineNum++
			line := strings.TrimSpace(scanner.Text())

			// Skip empty lines and comments
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if err := cfg.setValue(key, value); err != nil {
				return nil, fmt.Errorf("config line %d: %w", lineNum, err)
			}
		}

		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_STATUS":
		c.TopicStatus = value
	case "TOPIC_ENV":
		c.TopicEnv = value

	// BNO055 hardware
	case "BNO_TRANSPORT":
		v := strings.ToLower(value)
		if v != "i2c" && v != "uart" {
			return fmt.Errorf("BNO_TRANSPORT must be i2c or uart, got %q", value)
		}
		c.BNOTransport = v
	case "BNO_I2C_BUS":
		c.BNOI2CBus = value
	case "BNO_I2C_ADDR":
		addr, err := parseAddr(value)
		if err != nil {
			return fmt.Errorf("invalid BNO_I2C_ADDR %q: %w", value, err)
		}
		if addr != 0x28 && addr != 0x29 {
			return fmt.Errorf("BNO_I2C_ADDR must be 0x28 or 0x29, got 0x%02X", addr)
		}
		c.BNOI2CAddr = addr
	case "BNO_SCL_PIN":
		c.BNOSCLPin = value
	case "BNO_SDA_PIN":
		c.BNOSDAPin = value
	case "BNO_BUS_SPEED_HZ":
		hz, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid BNO_BUS_SPEED_HZ %q: %w", value, err)
		}
		if hz <= 0 || hz > 400000 {
			return fmt.Errorf("BNO_BUS_SPEED_HZ must be 1-400000, got %d", hz)
		}
		c.BNOBusSpeedHz = hz
	case "BNO_UART_PORT":
		c.BNOUARTPort = value
	case "BNO_UART_BAUD":
		baud, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid BNO_UART_BAUD %q: %w", value, err)
		}
		c.BNOUARTBaud = uint(baud)
	case "BNO_TX_TIMEOUT_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BNO_TX_TIMEOUT_MS %q: %w", value, err)
		}
		if ms < 0 {
			return fmt.Errorf("BNO_TX_TIMEOUT_MS must be >= 0, got %d", ms)
		}
		c.BNOTxTimeoutMS = ms
	case "BNO_RESET_TIMEOUT_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BNO_RESET_TIMEOUT_MS %q: %w", value, err)
		}
		if ms < 0 {
			return fmt.Errorf("BNO_RESET_TIMEOUT_MS must be >= 0, got %d", ms)
		}
		c.BNOResetTimeout = ms

	case "BMP_I2C_ADDR":
		addr, err := parseAddr(value)
		if err != nil {
			return fmt.Errorf("invalid BMP_I2C_ADDR %q: %w", value, err)
		}
		c.BMPI2CAddr = addr

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.SampleInterval = interval
	case "CONSOLE_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CONSOLE_LOG_INTERVAL %q: %w", value, err)
		}
		c.ConsoleLogInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval
	case "DISPLAY_CONTENT":
		if value != "orientation" && value != "status" {
			return fmt.Errorf("DISPLAY_CONTENT must be orientation or status, got %q", value)
		}
		c.DisplayContent = value

	case "REGISTER_DEBUG_ALLOWED_RANGES":
		if _, err := ParseRegisterRanges(value); err != nil {
			return fmt.Errorf("invalid REGISTER_DEBUG_ALLOWED_RANGES %q: %w", value, err)
		}
		c.RegisterDebugAllowedRanges = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func parseAddr(value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(addr), nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.BNOTransport == "uart" && c.BNOUARTPort == "" {
		return fmt.Errorf("BNO_UART_PORT is required when BNO_TRANSPORT=uart")
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL is required")
	}
	if c.ConsoleLogInterval <= 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
