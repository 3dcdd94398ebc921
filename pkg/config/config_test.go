package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, time.Second, cfg.Serial.SettleDelay)
	assert.Equal(t, time.Duration(0), cfg.Serial.AckTimeout)
	assert.Equal(t, 1000.0, cfg.Compiler.MovementSpeed)
	assert.Equal(t, 300.0, cfg.Compiler.CuttingSpeed)
	assert.Equal(t, 5.0, cfg.Compiler.PassDepth)
	assert.Equal(t, 2, cfg.Compiler.Passes)
	assert.Equal(t, 255, cfg.Compiler.LaserPower)
	assert.True(t, cfg.Compiler.Optimize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
serial:
  port: /dev/ttyACM0
  baud_rate: 250000
  ack_timeout: 30s
compiler:
  passes: 3
  cutting_speed: 450
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 250000, cfg.Serial.BaudRate)
	assert.Equal(t, 30*time.Second, cfg.Serial.AckTimeout)
	assert.Equal(t, 3, cfg.Compiler.Passes)
	assert.Equal(t, 450.0, cfg.Compiler.CuttingSpeed)
	assert.Equal(t, 1000.0, cfg.Compiler.MovementSpeed)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutsend.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial:\n  port: /dev/ttyUSB3\n  baud_rate: 9600\n"), 0o644))
	t.Setenv("CUTSEND_SERIAL_BAUD_RATE", "57600")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("port", "p", "", "")
	flags.IntP("baudrate", "b", 115200, "")
	flags.Duration("ack-timeout", 0, "")
	require.NoError(t, flags.Parse([]string{"-p", "/dev/ttyACM1", "--ack-timeout", "5s"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM1", cfg.Serial.Port, "flag overrides file")
	assert.Equal(t, 57600, cfg.Serial.BaudRate, "env overrides file, unset flag does not")
	assert.Equal(t, 5*time.Second, cfg.Serial.AckTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero baud", func(c *Config) { c.Serial.BaudRate = 0 }},
		{"negative settle", func(c *Config) { c.Serial.SettleDelay = -time.Second }},
		{"negative ack timeout", func(c *Config) { c.Serial.AckTimeout = -time.Second }},
		{"no passes", func(c *Config) { c.Compiler.Passes = 0 }},
		{"zero cutting speed", func(c *Config) { c.Compiler.CuttingSpeed = 0 }},
		{"negative depth", func(c *Config) { c.Compiler.PassDepth = -1 }},
		{"zero tolerance", func(c *Config) { c.Compiler.Tolerance = 0 }},
		{"negative power", func(c *Config) { c.Compiler.LaserPower = -1 }},
		{"bad log output", func(c *Config) { c.Log.Output = "syslog" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
