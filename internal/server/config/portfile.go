package config

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// applyPortFile replaces the port of EndpointAddr with the one found on
// the first line of PortFile. The host part is kept.
func applyPortFile(config *Config) error {
	if config.PortFile == "" {
		return nil
	}

	data, err := os.ReadFile(config.PortFile)
	if err != nil {
		return fmt.Errorf("port file: %w", err)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	var line string
	if sc.Scan() {
		line = strings.TrimSpace(sc.Text())
	}
	port, err := strconv.Atoi(line)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("port file %s: invalid port %q", config.PortFile, line)
	}

	host, _, err := net.SplitHostPort(config.EndpointAddr)
	if err != nil {
		host = ""
	}
	config.EndpointAddr = net.JoinHostPort(host, strconv.Itoa(port))
	return nil
}
