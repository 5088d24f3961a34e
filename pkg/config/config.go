package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// Load reads and parses the YAML config at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the effective config for values the gateway cannot run
// without or cannot honor.
func (c *Config) Validate() error {
	if c.Ledger.Endpoint == "" {
		return fmt.Errorf("ledger.endpoint is required")
	}
	if c.Ledger.Program == "" {
		return fmt.Errorf("ledger.program is required")
	}
	if c.Server.DBPath == "" {
		return fmt.Errorf("server.db_path is required")
	}
	if (c.Server.TLS.CertFile == "") != (c.Server.TLS.KeyFile == "") {
		return fmt.Errorf("server.tls requires both cert_file and key_file")
	}
	if c.Fetch.BaseDelay.Duration() > 0 && c.Fetch.MaxDelay.Duration() > 0 &&
		c.Fetch.MaxDelay.Duration() < c.Fetch.BaseDelay.Duration() {
		return fmt.Errorf("fetch.max_delay must be >= fetch.base_delay")
	}
	return nil
}

// RuntimeKeys derives the runtime API key sets from the effective config.
func (c *Config) RuntimeKeys() *RuntimeConfig {
	rc := &RuntimeConfig{
		FrontendKeys: map[string]struct{}{},
		AdminKeys:    map[string]struct{}{},
	}
	for _, k := range c.Security.APIKeys.Frontend {
		rc.FrontendKeys[k] = struct{}{}
	}
	for _, k := range c.Security.APIKeys.Admin {
		rc.AdminKeys[k] = struct{}{}
	}
	return rc
}
