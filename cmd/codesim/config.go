package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/musuliman/codesim/pkg/similarity"
)

// ConfigFileName is the optional per-project configuration file.
const ConfigFileName = "codesim.json"

// Config is the layered CLI configuration: defaults, then the project
// file, then CODESIM_* environment variables. Flags override at the
// command level.
type Config struct {
	MinMatch   int    `koanf:"min_match"`
	Workers    int    `koanf:"workers"`
	Normalize  bool   `koanf:"normalize"`
	BaseCode   string `koanf:"base_code"`
	StorePath  string `koanf:"store_path"`
	GrammarDir string `koanf:"grammar_dir"`

	projectRoot string
}

func loadConfig(projectRoot string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"min_match":   similarity.DefaultMinimumTokenMatch,
		"workers":     0,
		"normalize":   false,
		"base_code":   "",
		"store_path":  "",
		"grammar_dir": filepath.Join(projectRoot, defaultStoreDir, "grammars"),
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, err
	}

	cfgFile := filepath.Join(projectRoot, ConfigFileName)
	if _, err := os.Stat(cfgFile); err == nil {
		if err := k.Load(file.Provider(cfgFile), kjson.Parser()); err != nil {
			return nil, fmt.Errorf("%s: %w", cfgFile, err)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: "CODESIM_",
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, "CODESIM_")), value
		},
	}), nil)
	if err != nil {
		return nil, err
	}

	cfg := &Config{projectRoot: projectRoot}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
