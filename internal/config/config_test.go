package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, uint(5000), c.Port)
	assert.Equal(t, 10, c.MaxClients)
	assert.Equal(t, byte('~'), c.CommandChar)
	assert.Equal(t, 2056, c.BufferSize)
	assert.Equal(t, ":9090", c.MetricsAddr)
	assert.Equal(t, "commands.log", c.CommandLogPath)
	assert.Equal(t, "public_messages.log", c.MessageLogPath)
	assert.Equal(t, 5*time.Second, c.WriteTimeout)
	assert.True(t, c.Interactive)
	assert.NoError(t, c.Validate())
	assert.Equal(t, ":5000", c.Addr())
}

func TestLoad_FlagsOverrideDefaults(t *testing.T) {
	c, err := Load([]string{
		"-port", "6000",
		"-max-clients", "3",
		"-command-char", "!",
		"-buffer-size", "128",
		"-metrics-addr", "",
		"-command-log", "/tmp/c.log",
		"-message-log", "/tmp/m.log",
		"-write-timeout", "250ms",
		"-interactive=false",
	})
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Port:           6000,
		MaxClients:     3,
		CommandChar:    '!',
		BufferSize:     128,
		MetricsAddr:    "",
		CommandLogPath: "/tmp/c.log",
		MessageLogPath: "/tmp/m.log",
		WriteTimeout:   250 * time.Millisecond,
		Interactive:    false,
	}, c)
}

func TestLoad_BadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"bad int", []string{"-max-clients", "many"}},
		{"long command char", []string{"-command-char", "~~"}},
		{"empty command char", []string{"-command-char", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"port too large", func(c *Config) { c.Port = 70000 }, ErrInvalidPort},
		{"zero capacity", func(c *Config) { c.MaxClients = 0 }, ErrInvalidCapacity},
		{"space sentinel", func(c *Config) { c.CommandChar = ' ' }, ErrInvalidCommandChar},
		{"control sentinel", func(c *Config) { c.CommandChar = '\n' }, ErrInvalidCommandChar},
		{"tiny buffer", func(c *Config) { c.BufferSize = 1 }, ErrInvalidBufferSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), tt.want)
		})
	}
}

func TestPrompt(t *testing.T) {
	t.Run("answers", func(t *testing.T) {
		var c Config
		c.LoadDefaults()
		var out bytes.Buffer

		require.NoError(t, Prompt(&c, strings.NewReader("7000\n4\n#\n"), &out))
		assert.Equal(t, uint(7000), c.Port)
		assert.Equal(t, 4, c.MaxClients)
		assert.Equal(t, byte('#'), c.CommandChar)
		assert.Contains(t, out.String(), "Enter TCP port number")
		assert.Contains(t, out.String(), "Enter maximum chat capacity")
		assert.Contains(t, out.String(), "Enter command character (default is ~)")
	})

	t.Run("empty answers use defaults", func(t *testing.T) {
		var c Config
		c.LoadDefaults()
		c.CommandChar = '!'

		require.NoError(t, Prompt(&c, strings.NewReader("\n\n\n"), &bytes.Buffer{}))
		assert.Equal(t, uint(5000), c.Port)
		assert.Equal(t, 10, c.MaxClients)
		assert.Equal(t, byte('~'), c.CommandChar)
	})

	t.Run("bad port", func(t *testing.T) {
		var c Config
		c.LoadDefaults()
		err := Prompt(&c, strings.NewReader("99999\n"), &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrInvalidPort)
	})

	t.Run("bad capacity", func(t *testing.T) {
		var c Config
		c.LoadDefaults()
		err := Prompt(&c, strings.NewReader("5000\n0\n"), &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})
}
