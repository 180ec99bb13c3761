// Package config resolves crossview settings from built-in defaults, a
// yaml file, CROSSVIEW_* environment variables and command line flags,
// in increasing order of precedence. Every value remembers where it came
// from.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
	"github.com/lehigh-university-libraries/crossview/internal/grouping"
	"github.com/lehigh-university-libraries/crossview/internal/views"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// Environment variables read by ResolveConfig.
const (
	EnvDataset          = "CROSSVIEW_DATASET"
	EnvDelimiter        = "CROSSVIEW_DELIMITER"
	EnvOtherThreshold   = "CROSSVIEW_OTHER_THRESHOLD"
	EnvDropSingletons   = "CROSSVIEW_DROP_SINGLETONS"
	EnvClusterAttribute = "CROSSVIEW_CLUSTER_ATTRIBUTE"
	EnvPort             = "CROSSVIEW_PORT"
	EnvImageTimeout     = "CROSSVIEW_IMAGE_TIMEOUT"
)

// DefaultPort is the port serve listens on.
const DefaultPort = "8888"

type ResolvedValue struct {
	Value  string      `json:"value" yaml:"value"`
	Source ValueSource `json:"source" yaml:"source"`
	From   string      `json:"from,omitempty" yaml:"from,omitempty"`
}

// ResolveOptions carries flag values. Empty strings mean the flag was not
// given.
type ResolveOptions struct {
	ConfigPath          string
	CLIDataset          string
	CLIDelimiter        string
	CLIThreshold        string
	CLIDropSingletons   string
	CLIClusterAttribute string
	CLIPort             string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path" yaml:"config_path"`

	Dataset          ResolvedValue `json:"dataset" yaml:"dataset"`
	Delimiter        ResolvedValue `json:"delimiter" yaml:"delimiter"`
	Threshold        ResolvedValue `json:"other_threshold" yaml:"other_threshold"`
	DropSingletons   ResolvedValue `json:"drop_singletons" yaml:"drop_singletons"`
	ClusterAttribute ResolvedValue `json:"cluster_attribute" yaml:"cluster_attribute"`
	Bins             ResolvedValue `json:"timeline_bins" yaml:"timeline_bins"`
	Port             ResolvedValue `json:"port" yaml:"port"`
	ImageTimeout     ResolvedValue `json:"image_timeout" yaml:"image_timeout"`
}

type fileConfig struct {
	Dataset   string `yaml:"dataset"`
	Delimiter string `yaml:"delimiter"`
	Port      *int   `yaml:"port"`
	Grouping  struct {
		Threshold *float64 `yaml:"threshold"`
		Attribute string   `yaml:"attribute"`
	} `yaml:"grouping"`
	Treemap struct {
		DropSingletons *bool `yaml:"drop_singletons"`
	} `yaml:"treemap"`
	Timeline struct {
		Bins *int `yaml:"bins"`
	} `yaml:"timeline"`
	Images struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"images"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".crossview", "config.yaml")
}

func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{ConfigPath: path}
	applyDefault(&out.Delimiter, artwork.DefaultDelimiter)
	applyDefault(&out.Threshold, strconv.FormatFloat(grouping.DefaultThreshold, 'g', -1, 64))
	applyDefault(&out.DropSingletons, "false")
	applyDefault(&out.ClusterAttribute, string(artwork.AttrMovement))
	applyDefault(&out.Bins, strconv.Itoa(views.DefaultBinCount))
	applyDefault(&out.Port, DefaultPort)
	applyDefault(&out.ImageTimeout, "30s")

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.Dataset, cfg.Dataset, SourceConfig, path)
		// a delimiter may be whitespace, so it is not trimmed
		if cfg.Delimiter != "" {
			out.Delimiter = ResolvedValue{Value: cfg.Delimiter, Source: SourceConfig, From: path}
		}
		if cfg.Port != nil {
			apply(&out.Port, strconv.Itoa(*cfg.Port), SourceConfig, path)
		}
		if cfg.Grouping.Threshold != nil {
			apply(&out.Threshold, strconv.FormatFloat(*cfg.Grouping.Threshold, 'g', -1, 64), SourceConfig, path)
		}
		apply(&out.ClusterAttribute, cfg.Grouping.Attribute, SourceConfig, path)
		if cfg.Treemap.DropSingletons != nil {
			apply(&out.DropSingletons, strconv.FormatBool(*cfg.Treemap.DropSingletons), SourceConfig, path)
		}
		if cfg.Timeline.Bins != nil {
			apply(&out.Bins, strconv.Itoa(*cfg.Timeline.Bins), SourceConfig, path)
		}
		apply(&out.ImageTimeout, cfg.Images.Timeout, SourceConfig, path)
	}

	applyEnv(&out.Dataset, EnvDataset)
	if v := os.Getenv(EnvDelimiter); v != "" {
		out.Delimiter = ResolvedValue{Value: v, Source: SourceEnv, From: EnvDelimiter}
	}
	applyEnv(&out.Threshold, EnvOtherThreshold)
	applyEnv(&out.DropSingletons, EnvDropSingletons)
	applyEnv(&out.ClusterAttribute, EnvClusterAttribute)
	applyEnv(&out.Port, EnvPort)
	applyEnv(&out.ImageTimeout, EnvImageTimeout)

	apply(&out.Dataset, opts.CLIDataset, SourceCLI, "--dataset")
	if opts.CLIDelimiter != "" {
		out.Delimiter = ResolvedValue{Value: opts.CLIDelimiter, Source: SourceCLI, From: "--delimiter"}
	}
	apply(&out.Threshold, opts.CLIThreshold, SourceCLI, "--threshold")
	apply(&out.DropSingletons, opts.CLIDropSingletons, SourceCLI, "--drop-singletons")
	apply(&out.ClusterAttribute, opts.CLIClusterAttribute, SourceCLI, "--cluster-attribute")
	apply(&out.Port, opts.CLIPort, SourceCLI, "--port")

	if out.Dataset.Value != "" {
		out.Dataset.Value = expandUserPath(out.Dataset.Value)
	}

	return out, nil
}

// Settings are the typed, validated values of a ResolvedConfig.
type Settings struct {
	Dataset          string
	Delimiter        string
	Threshold        float64
	DropSingletons   bool
	ClusterAttribute artwork.Attribute
	Bins             int
	Port             string
	ImageTimeout     time.Duration
}

// Settings parses every resolved value. Errors name the source of the
// offending value.
func (r ResolvedConfig) Settings() (Settings, error) {
	s := Settings{
		Dataset:   r.Dataset.Value,
		Delimiter: r.Delimiter.Value,
		Port:      r.Port.Value,
	}

	var err error
	if s.Threshold, err = strconv.ParseFloat(r.Threshold.Value, 64); err != nil || s.Threshold <= 0 || s.Threshold >= 1 {
		return s, invalid("other threshold", r.Threshold, "a fraction between 0 and 1")
	}
	if s.DropSingletons, err = strconv.ParseBool(r.DropSingletons.Value); err != nil {
		return s, invalid("drop singletons", r.DropSingletons, "a boolean")
	}
	attr, ok := artwork.ParseAttribute(r.ClusterAttribute.Value)
	if !ok {
		return s, invalid("cluster attribute", r.ClusterAttribute, "one of "+attributeNames())
	}
	s.ClusterAttribute = attr
	if s.Bins, err = strconv.Atoi(r.Bins.Value); err != nil || s.Bins < 1 || s.Bins > views.MaxBinCount {
		return s, invalid("timeline bins", r.Bins, fmt.Sprintf("an integer between 1 and %d", views.MaxBinCount))
	}
	if port, err := strconv.Atoi(r.Port.Value); err != nil || port <= 0 || port > 65535 {
		return s, invalid("port", r.Port, "a TCP port")
	}
	if s.ImageTimeout, err = time.ParseDuration(r.ImageTimeout.Value); err != nil || s.ImageTimeout <= 0 {
		return s, invalid("image timeout", r.ImageTimeout, "a positive duration")
	}
	return s, nil
}

func invalid(name string, v ResolvedValue, want string) error {
	from := string(v.Source)
	if v.From != "" {
		from += " " + v.From
	}
	return fmt.Errorf("invalid %s %q from %s: expected %s", name, v.Value, from, want)
}

func attributeNames() string {
	names := make([]string, len(artwork.Attributes))
	for i, a := range artwork.Attributes {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyDefault(dst *ResolvedValue, v string) {
	*dst = ResolvedValue{Value: v, Source: SourceDefault, From: "built-in default"}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
