package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"genretopics/internal/domain"
)

// EnvConfigPath names a config file when no --config flag is given.
const EnvConfigPath = "GENRETOPICS_CONFIG"

// InputConfig names the CSV columns ingestion reads.
type InputConfig struct {
	TextColumn string `yaml:"text_column"`
	IDColumn   string `yaml:"id_column"`
}

// RuleConfig is one classifier rule. Rules are tried in file order.
type RuleConfig struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// ClassifierConfig replaces the built-in genre rules when Rules is non-empty.
type ClassifierConfig struct {
	Rules    []RuleConfig `yaml:"rules,omitempty"`
	Fallback string       `yaml:"fallback"`
}

// TokenizerConfig tunes tokenization and the vocabulary.
type TokenizerConfig struct {
	MinLength      int      `yaml:"min_length"`
	ExtraStopwords []string `yaml:"extra_stopwords,omitempty"`
	MaxTerms       int      `yaml:"max_terms"`
}

// ModelConfig configures the topic model. Alpha and Eta of zero mean 1/topics.
type ModelConfig struct {
	Granularity      string  `yaml:"granularity"`
	Topics           int     `yaml:"topics"`
	Alpha            float64 `yaml:"alpha"`
	Eta              float64 `yaml:"eta"`
	MaxIterations    int     `yaml:"max_iterations"`
	Tolerance        float64 `yaml:"tolerance"`
	DocMaxIterations int     `yaml:"doc_max_iterations"`
	DocTolerance     float64 `yaml:"doc_tolerance"`
	Seed             int64   `yaml:"seed"`
	Workers          int     `yaml:"workers"`
}

// SummaryConfig configures the per-topic term ranking.
type SummaryConfig struct {
	TopTerms int `yaml:"top_terms"`
}

// ProjectionConfig configures the PCA view.
type ProjectionConfig struct {
	MaxTerms int `yaml:"max_terms"`
}

// ReportConfig selects the report outputs.
type ReportConfig struct {
	Dir  string `yaml:"dir"`
	HTML bool   `yaml:"html"`
	CSV  bool   `yaml:"csv"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Input      InputConfig      `yaml:"input"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Tokenizer  TokenizerConfig  `yaml:"tokenizer"`
	Model      ModelConfig      `yaml:"model"`
	Summary    SummaryConfig    `yaml:"summary"`
	Projection ProjectionConfig `yaml:"projection"`
	Report     ReportConfig     `yaml:"report"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/genretopics/config.yaml.
// If neither exists, it writes defaults to ~/.config/genretopics/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values no stage can run with.
func (c *AppConfig) Validate() error {
	switch {
	case c.Input.TextColumn == "":
		return fmt.Errorf("%w: input.text_column is empty", domain.ErrInvalidConfig)
	case c.Model.Topics < 1:
		return fmt.Errorf("%w: model.topics must be at least 1, got %d", domain.ErrInvalidConfig, c.Model.Topics)
	case c.Model.Alpha < 0:
		return fmt.Errorf("%w: model.alpha must not be negative", domain.ErrInvalidConfig)
	case c.Model.Eta < 0:
		return fmt.Errorf("%w: model.eta must not be negative", domain.ErrInvalidConfig)
	case c.Model.Seed < 0:
		return fmt.Errorf("%w: model.seed must not be negative", domain.ErrInvalidConfig)
	case c.Tokenizer.MaxTerms < 0:
		return fmt.Errorf("%w: tokenizer.max_terms must not be negative", domain.ErrInvalidConfig)
	}
	switch domain.Granularity(c.Model.Granularity) {
	case domain.GranularityGenre, domain.GranularityDocument:
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedGranularity, c.Model.Granularity)
	}
	for i, r := range c.Classifier.Rules {
		if r.Label == "" || len(r.Keywords) == 0 {
			return fmt.Errorf("%w: classifier rule %d needs a label and keywords", domain.ErrInvalidConfig, i)
		}
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "genretopics", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Input:      InputConfig{TextColumn: "Plot", IDColumn: "Title"},
		Classifier: ClassifierConfig{Fallback: string(domain.GenreOther)},
		Tokenizer:  TokenizerConfig{MinLength: 2},
		Model: ModelConfig{
			Granularity:      string(domain.GranularityGenre),
			Topics:           5,
			MaxIterations:    100,
			Tolerance:        1e-4,
			DocMaxIterations: 100,
			DocTolerance:     1e-3,
			Seed:             42,
		},
		Summary:    SummaryConfig{TopTerms: 10},
		Projection: ProjectionConfig{MaxTerms: 50},
		Report:     ReportConfig{Dir: "out", HTML: true, CSV: true},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Input.TextColumn == "" {
		cfg.Input.TextColumn = "Plot"
	}
	if cfg.Classifier.Fallback == "" {
		cfg.Classifier.Fallback = string(domain.GenreOther)
	}
	if cfg.Tokenizer.MinLength <= 0 {
		cfg.Tokenizer.MinLength = 2
	}
	if cfg.Model.Granularity == "" {
		cfg.Model.Granularity = string(domain.GranularityGenre)
	}
	if cfg.Model.MaxIterations <= 0 {
		cfg.Model.MaxIterations = 100
	}
	if cfg.Model.Tolerance <= 0 {
		cfg.Model.Tolerance = 1e-4
	}
	if cfg.Model.DocMaxIterations <= 0 {
		cfg.Model.DocMaxIterations = 100
	}
	if cfg.Model.DocTolerance <= 0 {
		cfg.Model.DocTolerance = 1e-3
	}
	if cfg.Summary.TopTerms <= 0 {
		cfg.Summary.TopTerms = 10
	}
	if cfg.Projection.MaxTerms <= 0 {
		cfg.Projection.MaxTerms = 50
	}
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = "out"
	}
}
