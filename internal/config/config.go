// Package config holds the chat server's startup settings: defaults, a flag
// overlay and the interactive console questions asked when a terminal is
// attached.
package config

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/andy6609/framechat/internal/frame"
)

// Config holds runtime settings for the chat server.
//
// Fields:
//   - Port: TCP port to listen on (0 picks a free one).
//   - MaxClients: connection limit, also the registered-account limit.
//   - CommandChar: sentinel byte that marks a frame as a command.
//   - BufferSize: per-connection receive buffer; bounds the frame payload.
//   - MetricsAddr: Prometheus endpoint address, empty disables it.
//   - CommandLogPath / MessageLogPath: audit and chat history files.
//   - WriteTimeout: deadline for a single outbound frame write.
//   - Interactive: ask for port, capacity and sentinel on a terminal.
type Config struct {
	Port           uint
	MaxClients     int
	CommandChar    byte
	BufferSize     int
	MetricsAddr    string
	CommandLogPath string
	MessageLogPath string
	WriteTimeout   time.Duration
	Interactive    bool
}

const DefaultCommandChar = '~'

// LoadDefaults populates Config with the values the server ships with.
func (c *Config) LoadDefaults() {
	c.Port = 5000
	c.MaxClients = 10
	c.CommandChar = DefaultCommandChar
	c.BufferSize = frame.DefaultBufferSize
	c.MetricsAddr = ":9090"
	c.CommandLogPath = "commands.log"
	c.MessageLogPath = "public_messages.log"
	c.WriteTimeout = 5 * time.Second
	c.Interactive = true
}

// Load applies defaults and then the command-line flags in args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := ParseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr is the listen address for the chat port on all interfaces.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

var (
	ErrInvalidPort        = errors.New("port must be between 0 and 65535")
	ErrInvalidCapacity    = errors.New("maximum chat capacity must be at least 1")
	ErrInvalidCommandChar = errors.New("command character must be a printable, non-space character")
	ErrInvalidBufferSize  = errors.New("buffer size must be at least 2")
)

func (c *Config) Validate() error {
	if c.Port > 65535 {
		return ErrInvalidPort
	}
	if c.MaxClients < 1 {
		return ErrInvalidCapacity
	}
	if !validCommandChar(c.CommandChar) {
		return ErrInvalidCommandChar
	}
	if c.BufferSize < 2 {
		return ErrInvalidBufferSize
	}
	return nil
}

func validCommandChar(b byte) bool {
	r := rune(b)
	return b < unicode.MaxASCII && unicode.IsPrint(r) && !unicode.IsSpace(r)
}
