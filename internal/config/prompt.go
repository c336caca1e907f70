package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompt asks the console for the port, the chat capacity and the command
// character. An empty answer keeps the current value.
func Prompt(config *Config, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)

	port, err := ask(r, out, fmt.Sprintf("Enter TCP port number [%d]: ", config.Port))
	if err != nil {
		return err
	}
	if port != "" {
		v, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPort, port)
		}
		config.Port = uint(v)
	}

	capacity, err := ask(r, out, fmt.Sprintf("Enter maximum chat capacity [%d]: ", config.MaxClients))
	if err != nil {
		return err
	}
	if capacity != "" {
		v, err := strconv.Atoi(capacity)
		if err != nil || v < 1 {
			return fmt.Errorf("%w: %q", ErrInvalidCapacity, capacity)
		}
		config.MaxClients = v
	}

	char, err := ask(r, out, fmt.Sprintf("Enter command character (default is %c): ", DefaultCommandChar))
	if err != nil {
		return err
	}
	if char == "" {
		config.CommandChar = DefaultCommandChar
	} else {
		config.CommandChar = char[0]
	}

	return config.Validate()
}

func ask(r *bufio.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	line, err := r.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		if err == io.EOF {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
