// # internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"ccat/internal/summary"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "ccat.toml"

type Config struct {
	SourceDir string  `toml:"source_dir"`
	Exclude   Exclude `toml:"exclude"`
	Summary   Summary `toml:"summary"`
	Graph     Graph   `toml:"graph"`
	Output    Output  `toml:"output"`
	Watch     Watch   `toml:"watch"`
	Tracing   Tracing `toml:"tracing"`
	Metrics   Metrics `toml:"metrics"`
}

type Exclude struct {
	Dirs     []string `toml:"dirs"`     // Globs matched against directory base names
	Files    []string `toml:"files"`    // Globs matched against file base names
	Patterns []string `toml:"patterns"` // Substrings matched against the relative path
}

type Summary struct {
	Level   string        `toml:"level"`
	Disable []string      `toml:"disable"`
	Rules   []PatternRule `toml:"rules"`
}

// PatternRule is a regex rewrite applied to class, function and statement
// blocks at one summary level.
type PatternRule struct {
	ID          string `toml:"id"`
	Level       string `toml:"level"`
	Order       int    `toml:"order"`
	Pattern     string `toml:"pattern"`
	Replacement string `toml:"replacement"`
	Explanation string `toml:"explanation"`
}

type Graph struct {
	RemoveDisconnected bool   `toml:"remove_disconnected"`
	NodeLabels         string `toml:"node_labels"` // alpha or numeric
}

type Output struct {
	Concat   string `toml:"concat"`
	Notebook string `toml:"notebook"`
	Report   string `toml:"report"`
	DOT      string `toml:"dot"`
	Mermaid  string `toml:"mermaid"`
	PlantUML string `toml:"plantuml"`
	TSV      string `toml:"tsv"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Tracing struct {
	OTLPEndpoint string `toml:"otlp_endpoint"`
	Insecure     bool   `toml:"insecure"`
	ServiceName  string `toml:"service_name"`
}

type Metrics struct {
	Addr string `toml:"addr"`
}

const (
	LabelsAlpha   = "alpha"
	LabelsNumeric = "numeric"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.SourceDir == "" {
		cfg.SourceDir = "src"
	}
	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{".*", "__pycache__", "venv", "node_modules", "*.egg-info"}
	}
	if cfg.Summary.Level == "" {
		cfg.Summary.Level = summary.LevelNone.String()
	}
	if cfg.Graph.NodeLabels == "" {
		cfg.Graph.NodeLabels = LabelsAlpha
	}
	if cfg.Output.Concat == "" {
		cfg.Output.Concat = "colab_combined.py"
	}
	if cfg.Output.Notebook == "" {
		cfg.Output.Notebook = "colab_combined.ipynb"
	}
	// Default debounce if not set
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "ccat"
	}
}

// Load reads a TOML config, fills in defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when the file does not
// exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	if _, err := summary.ParseLevel(c.Summary.Level); err != nil {
		return fmt.Errorf("summary.level: %w", err)
	}
	switch c.Graph.NodeLabels {
	case LabelsAlpha, LabelsNumeric:
	default:
		return fmt.Errorf("graph.node_labels must be one of: alpha, numeric, got %q", c.Graph.NodeLabels)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	for _, group := range [][]string{c.Exclude.Dirs, c.Exclude.Files} {
		for _, pattern := range group {
			if _, err := glob.Compile(pattern); err != nil {
				return fmt.Errorf("invalid exclude glob %q: %w", pattern, err)
			}
		}
	}

	seen := make(map[string]bool, len(c.Summary.Rules))
	for i, rule := range c.Summary.Rules {
		ref := fmt.Sprintf("summary.rules[%d]", i)
		if strings.TrimSpace(rule.ID) == "" {
			return fmt.Errorf("%s.id must not be empty", ref)
		}
		if seen[rule.ID] {
			return fmt.Errorf("duplicate summary rule id %q", rule.ID)
		}
		seen[rule.ID] = true
		level, err := summary.ParseLevel(rule.Level)
		if err != nil {
			return fmt.Errorf("%s.level: %w", ref, err)
		}
		if level == summary.LevelNone {
			return fmt.Errorf("%s.level must be interface or core", ref)
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("%s.pattern: %w", ref, err)
		}
	}
	return nil
}

// SummaryLevel returns the parsed summary level. It assumes Validate passed.
func (c *Config) SummaryLevel() summary.Level {
	level, _ := summary.ParseLevel(c.Summary.Level)
	return level
}

// SummaryRules returns the default rule table with the configured pattern
// rules added and the disabled IDs removed.
func (c *Config) SummaryRules() (summary.Rules, error) {
	extra := make([]summary.Rule, 0, len(c.Summary.Rules))
	for _, pr := range c.Summary.Rules {
		level, err := summary.ParseLevel(pr.Level)
		if err != nil {
			return summary.Rules{}, fmt.Errorf("rule %s: %w", pr.ID, err)
		}
		rule, err := summary.PatternRule(pr.ID, level, pr.Order, pr.Pattern, pr.Replacement, pr.Explanation)
		if err != nil {
			return summary.Rules{}, err
		}
		extra = append(extra, rule)
	}
	return summary.Default().With(extra...).Without(c.Summary.Disable...), nil
}
