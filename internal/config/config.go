// Package config loads editor configuration from .vizedit.kdl files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	kdl "github.com/sblinch/kdl-go"
)

// ConfigFileName is the name of the configuration file.
const ConfigFileName = ".vizedit.kdl"

// Config is the editor configuration.
type Config struct {
	// Preview configures the proxy in front of the dev server.
	Preview *PreviewConfig `kdl:"preview"`

	// History configures the undo/redo stacks.
	History *HistoryConfig `kdl:"history"`

	// Assist configures the edit-log summarizer.
	Assist *AssistConfig `kdl:"assist"`
}

// PreviewConfig defines the proxied dev server.
type PreviewConfig struct {
	Target string `kdl:"target"`
	Listen string `kdl:"listen"`
	// AwaitTimeoutMS bounds how long a bridge request waits for the page.
	AwaitTimeoutMS int `kdl:"await-timeout-ms"`
}

// HistoryConfig controls undo/redo retention.
type HistoryConfig struct {
	Capacity int `kdl:"capacity"`
}

// AssistConfig controls the natural-language edit summarizer.
type AssistConfig struct {
	Model   string `kdl:"model"`
	Enabled bool   `kdl:"enabled"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Preview: &PreviewConfig{
			Target:         "http://localhost:3000",
			Listen:         "127.0.0.1:7870",
			AwaitTimeoutMS: 10000,
		},
		History: &HistoryConfig{
			Capacity: 50,
		},
		Assist: &AssistConfig{
			Model:   "claude-sonnet-4-5",
			Enabled: true,
		},
	}
}

// Load loads configuration starting from dir, walking up to the filesystem
// root. Missing files yield the defaults.
func Load(dir string) (*Config, error) {
	path := FindConfigFile(dir)
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// FindConfigFile searches for .vizedit.kdl from dir upward.
func FindConfigFile(dir string) string {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(absDir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			break
		}
		absDir = parent
	}

	return ""
}

// LoadFile loads configuration from a specific file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(string(data))
}

// Parse parses KDL configuration data over the defaults.
func Parse(data string) (*Config, error) {
	cfg := DefaultConfig()
	if err := kdl.Unmarshal([]byte(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes a documented starter configuration file.
func WriteDefault(path string) error {
	starter := `// vizedit configuration

preview {
    // Dev server to edit
    target "http://localhost:3000"

    // Address the instrumented proxy listens on
    listen "127.0.0.1:7870"

    // How long to wait for the page to answer a bridge request
    await-timeout-ms 10000
}

history {
    // Undo/redo stack depth
    capacity 50
}

assist {
    enabled true
    model "claude-sonnet-4-5"
}
`
	return os.WriteFile(path, []byte(starter), 0644)
}
