// Package catalog holds the narrative content attached to incidents. The
// scheduler treats entries as opaque payloads; only cooldown and gate are read.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Entry is the content for one incident type, optionally narrowed by a key.
type Entry struct {
	Type     string   `yaml:"type"`
	Key      string   `yaml:"key,omitempty"`
	Title    string   `yaml:"title"`
	Text     string   `yaml:"text"`
	Tags     []string `yaml:"tags,omitempty"`
	Cooldown *int     `yaml:"cooldown,omitempty"` // overrides the built-in window
	Gate     string   `yaml:"gate,omitempty"`     // CEL expression, must yield bool
}

// Catalog is an indexed set of entries.
type Catalog struct {
	Entries []Entry `yaml:"incidents"`

	index map[string]int
}

func indexKey(typ, key string) string {
	if key == "" {
		return typ
	}
	return typ + "/" + key
}

// Parse decodes catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	c.index = make(map[string]int, len(c.Entries))
	for i, e := range c.Entries {
		if e.Type == "" {
			return nil, fmt.Errorf("catalog entry %d has no type", i)
		}
		k := indexKey(e.Type, e.Key)
		if _, dup := c.index[k]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %s", k)
		}
		c.index[k] = i
	}
	return &c, nil
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Lookup finds the entry for a type and key, falling back to the type's
// general entry when the key has none. A nil catalog finds nothing.
func (c *Catalog) Lookup(typ, key string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	if key != "" {
		if i, ok := c.index[indexKey(typ, key)]; ok {
			return c.Entries[i], true
		}
	}
	if i, ok := c.index[typ]; ok {
		return c.Entries[i], true
	}
	return Entry{}, false
}

// Payload returns the opaque content handed to the presentation layer.
// Unknown types yield a payload naming only the type.
func (c *Catalog) Payload(typ, key string) map[string]any {
	p := map[string]any{"type": typ}
	if key != "" {
		p["key"] = key
	}
	e, ok := c.Lookup(typ, key)
	if !ok {
		return p
	}
	p["title"] = e.Title
	p["text"] = e.Text
	if len(e.Tags) > 0 {
		p["tags"] = append([]string(nil), e.Tags...)
	}
	return p
}

// Cooldowns returns per-type window overrides from general entries.
func (c *Catalog) Cooldowns() map[string]int {
	out := make(map[string]int)
	if c == nil {
		return out
	}
	for _, e := range c.Entries {
		if e.Key == "" && e.Cooldown != nil {
			out[e.Type] = *e.Cooldown
		}
	}
	return out
}

// Gates returns the CEL gate expression of each type that declares one.
func (c *Catalog) Gates() map[string]string {
	out := make(map[string]string)
	if c == nil {
		return out
	}
	for _, e := range c.Entries {
		if e.Key == "" && e.Gate != "" {
			out[e.Type] = e.Gate
		}
	}
	return out
}
