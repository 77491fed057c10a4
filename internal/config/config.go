package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/yousuf/ctxgen/internal/files"
)

// DefaultFileName is the project configuration file created by init.
const DefaultFileName = "ctxgen.config.json"

// DefaultSource is the directory generated clients are written to.
const DefaultSource = "src/ctxcn"

// DefaultRelays are the endpoints embedded in generated clients when the
// project does not configure any.
var DefaultRelays = []string{"ws://localhost:10547"}

// ErrNotFound is returned when no configuration file exists.
var ErrNotFound = errors.New("config file not found")

// fileNames lists the configuration files Find looks for, in order.
var fileNames = []string{DefaultFileName, "ctxgen.config.toml", "ctxgen.config.yaml", "ctxgen.config.yml"}

// Config represents the project configuration
type Config struct {
	Source       string            `json:"source" toml:"source" yaml:"source"`
	Relays       []string          `json:"relays" toml:"relays" yaml:"relays"`
	PrivateKey   string            `json:"privateKey,omitempty" toml:"privateKey,omitempty" yaml:"privateKey,omitempty"`
	AddedClients []string          `json:"addedClients" toml:"addedClients" yaml:"addedClients"`
	ClientNames  map[string]string `json:"clientNames,omitempty" toml:"clientNames,omitempty" yaml:"clientNames,omitempty"`

	// McpServers records how to reach each added peer for discovery, keyed
	// by peer identity.
	McpServers map[string]McpServerConfig `json:"mcpServers,omitempty" toml:"mcpServers,omitempty" yaml:"mcpServers,omitempty"`

	// Include and Exclude are glob patterns matched against operation names.
	Include []string `json:"include,omitempty" toml:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" toml:"exclude,omitempty" yaml:"exclude,omitempty"`

	Compiler CompilerConfig `json:"compiler,omitzero" toml:"compiler,omitempty" yaml:"compiler,omitempty"`
}

// McpServerConfig describes how to discover one peer's operations
type McpServerConfig struct {
	Type string `json:"type" toml:"type" yaml:"type"` // "stdio", "http", "sse" or "file"

	// Stdio fields
	Command string            `json:"command,omitempty" toml:"command,omitempty" yaml:"command,omitempty"`
	Args    []string          `json:"args,omitempty" toml:"args,omitempty" yaml:"args,omitempty"`
	Cwd     string            `json:"cwd,omitempty" toml:"cwd,omitempty" yaml:"cwd,omitempty"`
	Env     map[string]string `json:"env,omitempty" toml:"env,omitempty" yaml:"env,omitempty"`

	// HTTP/SSE fields
	URL     string            `json:"url,omitempty" toml:"url,omitempty" yaml:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty" toml:"headers,omitempty" yaml:"headers,omitempty"`

	// File fields
	Path string `json:"path,omitempty" toml:"path,omitempty" yaml:"path,omitempty"`
}

// CompilerConfig selects an external structural-type compiler
type CompilerConfig struct {
	// Wasm is the path to an extism plugin exporting compileType.
	Wasm string `json:"wasm,omitempty" toml:"wasm,omitempty" yaml:"wasm,omitempty"`
}

// Default returns the configuration used when a field is not set.
func Default() *Config {
	return &Config{
		Source:       DefaultSource,
		Relays:       slices.Clone(DefaultRelays),
		AddedClients: []string{},
	}
}

// Find returns the first configuration file present in dir.
func Find(dir string) (string, error) {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if files.FileExists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
}

// Load reads and parses the configuration file. The format is chosen by
// extension; missing fields fall back to defaults.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	switch format(configPath) {
	case "toml":
		_, err = toml.Decode(string(data), config)
	case "yaml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(config)

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Save writes config to configPath in the format chosen by its extension.
func Save(configPath string, config *Config) error {
	if err := validate(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch format(configPath) {
	case "toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(config)
		data = buf.Bytes()
	case "yaml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	perm := os.FileMode(0o644)
	if config.PrivateKey != "" {
		perm = 0o600
	}
	if err := files.WriteFileWithDir(configPath, data, perm); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// HasClient reports whether peer has already been generated.
func (c *Config) HasClient(peer string) bool {
	return slices.Contains(c.AddedClients, peer)
}

// AddClient records peer and the client base name generated for it.
func (c *Config) AddClient(peer, name string) {
	if !c.HasClient(peer) {
		c.AddedClients = append(c.AddedClients, peer)
	}
	if name != "" {
		if c.ClientNames == nil {
			c.ClientNames = make(map[string]string)
		}
		c.ClientNames[peer] = name
	}
}

// SetServer records how to discover peer.
func (c *Config) SetServer(peer string, server McpServerConfig) {
	if c.McpServers == nil {
		c.McpServers = make(map[string]McpServerConfig)
	}
	c.McpServers[peer] = server
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func applyDefaults(config *Config) {
	if strings.TrimSpace(config.Source) == "" {
		config.Source = DefaultSource
	}
	if config.Relays == nil {
		config.Relays = slices.Clone(DefaultRelays)
	}
	if config.AddedClients == nil {
		config.AddedClients = []string{}
	}
}

// validate checks if the configuration is valid
func validate(config *Config) error {
	for _, relay := range config.Relays {
		if !strings.HasPrefix(relay, "ws://") && !strings.HasPrefix(relay, "wss://") {
			return fmt.Errorf("relay %q: must be a ws:// or wss:// URL", relay)
		}
	}

	for name, server := range config.McpServers {
		if err := server.Validate(); err != nil {
			return fmt.Errorf("server %q: %w", name, err)
		}
	}

	for _, pattern := range append(slices.Clone(config.Include), config.Exclude...) {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// Validate checks the fields required by the server's transport type.
func (s McpServerConfig) Validate() error {
	switch s.Type {
	case "stdio":
		if s.Command == "" {
			return fmt.Errorf("command is required for stdio type")
		}
	case "http", "sse":
		if s.URL == "" {
			return fmt.Errorf("url is required for %s type", s.Type)
		}
	case "file":
		if s.Path == "" {
			return fmt.Errorf("path is required for file type")
		}
	default:
		return fmt.Errorf("invalid type %q (must be stdio, http, sse, or file)", s.Type)
	}
	return nil
}
