package config

import (
	"flag"
	"fmt"
	"io"
)

// ParseFlags overlays command-line flags from args onto config.
//
// Supported flags:
//
//	-port uint            chat TCP port
//	-max-clients int      connection and account capacity
//	-command-char string  single command sentinel character
//	-buffer-size int      per-connection receive buffer
//	-metrics-addr string  Prometheus listen address ("" disables)
//	-command-log string   command audit file
//	-message-log string   public message history file
//	-write-timeout dur    outbound write deadline
//	-interactive bool     prompt on a terminal for port, capacity and sentinel
func ParseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("chat-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.UintVar(&config.Port, "port", config.Port, "chat TCP port")
	fs.IntVar(&config.MaxClients, "max-clients", config.MaxClients, "maximum chat capacity")
	commandChar := fs.String("command-char", string(config.CommandChar), "command character")
	fs.IntVar(&config.BufferSize, "buffer-size", config.BufferSize, "receive buffer size in bytes")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", config.MetricsAddr, "metrics listen address")
	fs.StringVar(&config.CommandLogPath, "command-log", config.CommandLogPath, "command audit log file")
	fs.StringVar(&config.MessageLogPath, "message-log", config.MessageLogPath, "public message log file")
	fs.DurationVar(&config.WriteTimeout, "write-timeout", config.WriteTimeout, "outbound write deadline")
	fs.BoolVar(&config.Interactive, "interactive", config.Interactive, "ask for settings on a terminal")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if len(*commandChar) != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidCommandChar, *commandChar)
	}
	config.CommandChar = (*commandChar)[0]
	return nil
}
