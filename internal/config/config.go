package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mcncl/json2xml/internal/generator"
	"gopkg.in/yaml.v3"
)

// Defaults used when no file, environment variable or flag sets a value.
const (
	DefaultRootElement = "root"
	DefaultMaxDepth    = 1000
	DefaultScope       = ScopeResponse
)

// MaxDepthLimit is the largest nesting bound that can be configured. Parsing
// and serializing recurse once per level.
const MaxDepthLimit = 100000

// Environment variables that override file values.
const (
	EnvMaxDepth    = "JSON2XML_MAX_DEPTH"
	EnvRootElement = "JSON2XML_ROOT_ELEMENT"
)

// Scope says which side of an HTTP exchange a payload came from. It only
// affects how callers report failures.
type Scope string

const (
	ScopeRequest  Scope = "request"
	ScopeResponse Scope = "response"
)

// Config represents the complete configuration for json2xml
type Config struct {
	RootElement string       `yaml:"root_element" validate:"required,xmlname"`
	MaxDepth    int          `yaml:"max_depth" validate:"gt=0,lte=100000"`
	Scope       Scope        `yaml:"scope" validate:"oneof=request response"`
	Input       InputConfig  `yaml:"input"`
	Output      OutputConfig `yaml:"output"`
	Naming      NamingConfig `yaml:"naming"`
	Dev         DevConfig    `yaml:"dev"`
}

// InputConfig controls how payloads are read
type InputConfig struct {
	Charset string `yaml:"charset"`
	// MaxSize caps the payload in bytes; 0 means unlimited.
	MaxSize int64 `yaml:"max_size" validate:"gte=0"`
}

// OutputConfig controls the shape of the generated XML
type OutputConfig struct {
	Declaration bool   `yaml:"declaration"`
	Indent      string `yaml:"indent"`
}

// NamingConfig controls how JSON keys become element names
type NamingConfig struct {
	Style string `yaml:"style" validate:"oneof=keep camel lower_camel snake kebab"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		RootElement: DefaultRootElement,
		MaxDepth:    DefaultMaxDepth,
		Scope:       DefaultScope,
		Input: InputConfig{
			Charset: "utf-8",
			MaxSize: 0,
		},
		Output: OutputConfig{
			Declaration: false,
			Indent:      "",
		},
		Naming: NamingConfig{
			Style: string(generator.NamingKeep),
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("xmlname", func(fl validator.FieldLevel) bool {
		return generator.IsValidName(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("config: registering xmlname validation: %v", err))
	}
	return v
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadConfig loads and validates configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	cfg, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readConfigFile overlays a YAML file on the defaults without validating it.
func readConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".json2xml.yml", ".json2xml.yaml", "json2xml.yml", "json2xml.yaml"}

	// Start from current directory
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// ApplyEnv overrides values from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvMaxDepth); ok && strings.TrimSpace(v) != "" {
		depth, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxDepth, v, err)
		}
		c.MaxDepth = depth
	}
	if v, ok := lookup(EnvRootElement); ok && strings.TrimSpace(v) != "" {
		c.RootElement = strings.TrimSpace(v)
	}
	return nil
}

// Overrides holds values given on the command line. Zero values mean the
// flag was not set.
type Overrides struct {
	RootElement string
	MaxDepth    int
	Charset     string
	Indent      string
	Naming      string
	Declaration bool
	Debug       bool
}

// LoadConfigWithCLI resolves the configuration once, in order of precedence:
// defaults, config file, environment, command line.
func LoadConfigWithCLI(configPath string, cli Overrides, lookup func(string) (string, bool)) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Load config file if provided. It is validated once every layer is applied.
	if configPath != "" {
		fileConfig, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if lookup != nil {
		if err := cfg.ApplyEnv(lookup); err != nil {
			return nil, err
		}
	}

	if cli.RootElement != "" {
		cfg.RootElement = cli.RootElement
	}
	if cli.MaxDepth != 0 {
		cfg.MaxDepth = cli.MaxDepth
	}
	if cli.Charset != "" {
		cfg.Input.Charset = cli.Charset
	}
	if cli.Indent != "" {
		cfg.Output.Indent = cli.Indent
	}
	if cli.Naming != "" {
		cfg.Naming.Style = cli.Naming
	}
	// Booleans can only switch features on from the command line.
	if cli.Declaration {
		cfg.Output.Declaration = true
	}
	if cli.Debug {
		cfg.Dev.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
