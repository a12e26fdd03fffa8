// Package yaml provides the file-backed configuration layer: a
// hierarchical ConfigProvider plus typed provider and gateway settings,
// all parsed from a single YAML document.
package yaml

import (
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/docfed/docfed"
	"gopkg.in/yaml.v3"
)

// Compile-time interface verification.
var _ docfed.ConfigProvider = (*Config)(nil)

// Config is a YAML-backed configuration tree. The parsed document is
// swapped atomically on Reload, so concurrent readers never observe a
// half-updated tree.
type Config struct {
	path string
	tree atomic.Pointer[map[string]any]
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	c := &Config{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse builds a Config from raw YAML bytes. Parse-built configs have
// no backing file and cannot be reloaded.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	tree, err := parseTree(data)
	if err != nil {
		return nil, err
	}
	c.tree.Store(&tree)
	return c, nil
}

// Reload re-reads the backing file and swaps in the new tree. On error
// the previous tree stays in effect.
func (c *Config) Reload() error {
	if c.path == "" {
		return docfed.Errorf(docfed.ECONFIG, "config has no backing file")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return docfed.Errorf(docfed.ECONFIG, "failed to read config file %q: %v", c.path, err)
	}

	tree, err := parseTree(data)
	if err != nil {
		return err
	}
	c.tree.Store(&tree)
	return nil
}

func parseTree(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, docfed.Errorf(docfed.ECONFIG, "failed to parse config: %v", err)
	}
	if tree == nil {
		tree = map[string]any{}
	}
	return tree, nil
}

// Get resolves a dotted key path (e.g., "policy.ttl.long") against the
// configuration tree.
func (c *Config) Get(path string) (any, bool) {
	treep := c.tree.Load()
	if treep == nil || path == "" {
		return nil, false
	}

	var node any = *treep
	for _, key := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// ProviderConfig is the typed configuration for one external provider.
type ProviderConfig struct {
	docfed.ProviderDescriptor

	Endpoint       string  // base URL of the provider's search API
	APIKey         string  // optional bearer token
	RequestsPerSec float64 // zero means unlimited
}

// providerYAML mirrors one entry of the providers list on disk.
type providerYAML struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Enabled        *bool    `yaml:"enabled"`
	Technologies   []string `yaml:"technologies"`
	Timeout        string   `yaml:"timeout"`
	MaxConcurrency int      `yaml:"maxConcurrency"`
	Endpoint       string   `yaml:"endpoint"`
	APIKey         string   `yaml:"apiKey"`
	RequestsPerSec float64  `yaml:"requestsPerSec"`
}

// Providers returns the typed provider configurations in file order.
// Providers are enabled unless explicitly disabled.
func (c *Config) Providers() ([]ProviderConfig, error) {
	raw, ok := c.Get("providers")
	if !ok {
		return nil, docfed.Errorf(docfed.ECONFIG, "no providers configured")
	}

	// Round-trip through YAML to decode the generic list into the typed
	// form with field validation.
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, docfed.Errorf(docfed.ECONFIG, "invalid providers section: %v", err)
	}
	var entries []providerYAML
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, docfed.Errorf(docfed.ECONFIG, "invalid providers section: %v", err)
	}
	if len(entries) == 0 {
		return nil, docfed.Errorf(docfed.ECONFIG, "no providers configured")
	}

	configs := make([]ProviderConfig, 0, len(entries))
	for _, e := range entries {
		pc := ProviderConfig{
			ProviderDescriptor: docfed.ProviderDescriptor{
				ID:             e.ID,
				Name:           e.Name,
				Enabled:        e.Enabled == nil || *e.Enabled,
				Technologies:   e.Technologies,
				MaxConcurrency: e.MaxConcurrency,
			},
			Endpoint:       e.Endpoint,
			APIKey:         e.APIKey,
			RequestsPerSec: e.RequestsPerSec,
		}
		if e.Timeout != "" {
			d, err := time.ParseDuration(e.Timeout)
			if err != nil {
				return nil, docfed.Errorf(docfed.ECONFIG, "provider %q has invalid timeout %q", e.ID, e.Timeout)
			}
			pc.Timeout = d
		}
		if err := pc.Validate(); err != nil {
			return nil, err
		}
		configs = append(configs, pc)
	}
	return configs, nil
}
