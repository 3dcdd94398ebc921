// Package config loads the cutsend settings from defaults, an optional YAML
// file, CUTSEND_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is built once at start-up and passed by pointer to the components
// that need it.
type Config struct {
	Serial   SerialConfig   `mapstructure:"serial"`
	Compiler CompilerConfig `mapstructure:"compiler"`
	Log      LogConfig      `mapstructure:"log"`
}

// SerialConfig controls the connection to the machine.
type SerialConfig struct {
	// Port is the device name; empty means auto-detect.
	Port     string `mapstructure:"port"`
	BaudRate int    `mapstructure:"baud_rate"`
	// SettleDelay is the pause after the wake sequence before stale input
	// is discarded.
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	// AckTimeout bounds the wait for each acknowledgement; 0 waits forever.
	AckTimeout time.Duration `mapstructure:"ack_timeout"`
}

// CompilerConfig holds the SVG to G-code conversion settings.
type CompilerConfig struct {
	MovementSpeed float64 `mapstructure:"movement_speed"`
	CuttingSpeed  float64 `mapstructure:"cutting_speed"`
	PassDepth     float64 `mapstructure:"pass_depth"`
	Passes        int     `mapstructure:"passes"`
	LaserPower    int     `mapstructure:"laser_power"`
	// Tolerance is the maximum deviation in mm when curves are flattened.
	Tolerance float64 `mapstructure:"tolerance"`
	// Optimize reorders paths to shorten travel moves and cuts paths that
	// meet end to start without switching the laser off.
	Optimize bool `mapstructure:"optimize"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	Output string        `mapstructure:"output"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig configures the rotating log file.
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

const envPrefix = "CUTSEND"

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"port":           "serial.port",
	"baudrate":       "serial.baud_rate",
	"settle":         "serial.settle_delay",
	"ack-timeout":    "serial.ack_timeout",
	"movement-speed": "compiler.movement_speed",
	"cutting-speed":  "compiler.cutting_speed",
	"pass-depth":     "compiler.pass_depth",
	"passes":         "compiler.passes",
	"laser-power":    "compiler.laser_power",
	"tolerance":      "compiler.tolerance",
	"optimize":       "compiler.optimize",
	"log-level":      "log.level",
}

// Load reads the configuration. configPath may be empty, in which case
// cutsend.yaml is looked up in the working directory and in
// $HOME/.config/cutsend; a missing file is not an error. flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("cutsend")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "cutsend"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults are well-formed; Unmarshal cannot fail on them.
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud_rate", 115200)
	v.SetDefault("serial.settle_delay", "1s")
	v.SetDefault("serial.ack_timeout", "0s")

	v.SetDefault("compiler.movement_speed", 1000.0)
	v.SetDefault("compiler.cutting_speed", 300.0)
	v.SetDefault("compiler.pass_depth", 5.0)
	v.SetDefault("compiler.passes", 2)
	v.SetDefault("compiler.laser_power", 255)
	v.SetDefault("compiler.tolerance", 0.1)
	v.SetDefault("compiler.optimize", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "cutsend.log")
	v.SetDefault("log.file.max_size", 10)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.compress", true)
}

// Validate rejects settings no machine could use.
func (c *Config) Validate() error {
	switch {
	case c.Serial.BaudRate <= 0:
		return fmt.Errorf("serial.baud_rate must be positive, got %d", c.Serial.BaudRate)
	case c.Serial.SettleDelay < 0:
		return fmt.Errorf("serial.settle_delay must not be negative, got %s", c.Serial.SettleDelay)
	case c.Serial.AckTimeout < 0:
		return fmt.Errorf("serial.ack_timeout must not be negative, got %s", c.Serial.AckTimeout)
	case c.Compiler.Passes < 1:
		return fmt.Errorf("compiler.passes must be at least 1, got %d", c.Compiler.Passes)
	case c.Compiler.MovementSpeed <= 0 || c.Compiler.CuttingSpeed <= 0:
		return fmt.Errorf("compiler speeds must be positive")
	case c.Compiler.PassDepth < 0:
		return fmt.Errorf("compiler.pass_depth must not be negative, got %g", c.Compiler.PassDepth)
	case c.Compiler.Tolerance <= 0:
		return fmt.Errorf("compiler.tolerance must be positive, got %g", c.Compiler.Tolerance)
	case c.Compiler.LaserPower < 0:
		return fmt.Errorf("compiler.laser_power must not be negative, got %d", c.Compiler.LaserPower)
	}
	switch c.Log.Output {
	case "stderr", "file", "both":
	default:
		return fmt.Errorf("log.output must be stderr, file or both, got %q", c.Log.Output)
	}
	return nil
}
