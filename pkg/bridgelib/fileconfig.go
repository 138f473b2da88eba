package bridgelib

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileEntryPoints is the YAML shape of one script/style pair.
type fileEntryPoints struct {
	Script string `yaml:"script"`
	Style  string `yaml:"style"`
}

// FileConfig is the on-disk YAML shape of the bridge configuration.
type FileConfig struct {
	Backend  string `yaml:"backend"`
	LogLevel string `yaml:"log_level"`

	Rewrites []struct {
		From string `yaml:"from"`
		To   string `yaml:"to"`
	} `yaml:"rewrites"`

	// Bypass lists extra path prefixes left to the surrounding host.
	Bypass []string `yaml:"bypass"`

	Entrypoints struct {
		fileEntryPoints `yaml:",inline"`
		Modules         map[string]fileEntryPoints `yaml:"modules"`
	} `yaml:"entrypoints"`

	// ModuleMeta names the <meta> tag carrying the module identifier.
	ModuleMeta string `yaml:"module_meta"`
}

// LoadFileConfig reads and validates the YAML configuration at path.
func LoadFileConfig(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("syntax error in config %s: %w", path, err)
	}
	if fc.Backend == "" {
		return nil, fmt.Errorf("config %s: backend is required", path)
	}
	return &fc, nil
}

// BuildConfig turns the file configuration into a runnable Config with
// the reference HTTP delegate.
func (fc *FileConfig) BuildConfig(sink Sink) (Config, error) {
	level := LevelInfo
	if fc.LogLevel != "" {
		var err error
		level, err = ParseLevel(fc.LogLevel)
		if err != nil {
			return Config{}, err
		}
	}

	var extract ModuleExtractor
	if fc.ModuleMeta != "" {
		extract = MetaModuleExtractor(fc.ModuleMeta)
	}

	cfg := Config{
		BackendURL: fc.Backend,
		Delegate:   NewHTTPDelegate(nil, extract),
		LogLevel:   level,
		LogSink:    sink,
		Assets: AssetConfig{
			Global: EntryPoints{
				Script: fc.Entrypoints.Script,
				Style:  fc.Entrypoints.Style,
			},
		},
	}

	for _, r := range fc.Rewrites {
		cfg.Rewrites = append(cfg.Rewrites, RewriteRule{Prefix: r.From, Replacement: r.To})
	}

	if len(fc.Bypass) > 0 {
		prefixes := append([]string(nil), fc.Bypass...)
		cfg.Bypass = func(path string) bool {
			for _, prefix := range prefixes {
				if strings.HasPrefix(path, prefix) {
					return true
				}
			}
			return false
		}
	}

	if len(fc.Entrypoints.Modules) > 0 {
		modules := make(map[string]EntryPoints, len(fc.Entrypoints.Modules))
		for name, ep := range fc.Entrypoints.Modules {
			modules[name] = EntryPoints{Script: ep.Script, Style: ep.Style}
		}
		cfg.Assets.ResolveModule = func(module string) EntryPoints {
			return modules[module]
		}
	}

	return cfg, nil
}
