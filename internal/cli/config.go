package cli

import (
	"os"
	"strings"
)

type Config struct {
	ServerURL   string
	RequestedBy string
	Output      string
	Verbose     bool
}

func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("LINEUPCTL_SERVER", "http://localhost:8080"),
		RequestedBy: os.Getenv("LINEUPCTL_REQUESTED_BY"),
		Output:      "text",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}
