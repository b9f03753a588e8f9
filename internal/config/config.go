package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Collection describes one source collection
type Collection struct {
	// Creator is credited on every clipping from the collection
	Creator string `yaml:"creator"`
}

// Config holds the settings shared by every command
type Config struct {
	// PageWidth is the zero padded width of page image filenames
	PageWidth int `yaml:"page_width" default:"3" validate:"min=1,max=9"`
	// DJVUCommand converts the first page of a DjVu file to TIFF; the
	// source and destination paths are appended.
	DJVUCommand []string `yaml:"djvu_command"`
	WikidataURL string   `yaml:"wikidata_url" validate:"omitempty,url"`
	// Collections maps the collection code used in the master table
	Collections map[string]Collection `yaml:"collections" validate:"dive"`
}

// DefaultCollections are the collections known without a config file
func DefaultCollections() map[string]Collection {
	return map[string]Collection{
		"britishj":    {Creator: "Jennie"},
		"british":     {Creator: "Nick"},
		"irish-drama": {},
		"conrad":      {},
		"russian":     {},
	}
}

// Load reads the YAML config at path. An empty path yields the defaults.
// Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	if cfg.Collections == nil {
		cfg.Collections = DefaultCollections()
	}

	if cmd := strings.Fields(os.Getenv("CLIPPINGS_DJVU_COMMAND")); len(cmd) > 0 {
		cfg.DJVUCommand = cmd
	}
	if url := os.Getenv("WIKIDATA_API_URL"); url != "" {
		cfg.WikidataURL = url
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Creators maps collection codes to the person who assembled them.
func (c *Config) Creators() map[string]string {
	creators := make(map[string]string, len(c.Collections))
	for code, col := range c.Collections {
		if col.Creator != "" {
			creators[code] = col.Creator
		}
	}
	return creators
}
