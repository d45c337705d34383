package clicmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// Config holds defaults `vernamfs init` falls back to when a flag is not
// given explicitly. It is read from a JSON-with-comments file so operators
// can annotate their choices inline.
type Config struct {
	Padding       uint64 `json:"padding,omitempty"`
	MaxFiles      uint32 `json:"max_files,omitempty"`       //nolint:tagliatelle
	MaxNameLength int    `json:"max_name_length,omitempty"` //nolint:tagliatelle
}

// ConfigFileName is the default config file name, looked up in the working
// directory when no --config flag is given.
const ConfigFileName = ".vernamfs.json"

// DefaultConfig returns the built-in defaults, used when no config file is
// present and no flag overrides them.
func DefaultConfig() Config {
	return Config{
		Padding:       vernamfs.DefaultPadding,
		MaxFiles:      64,
		MaxNameLength: 64,
	}
}

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/vernamfs/config.json if set in env, otherwise
// ~/.config/vernamfs/config.json. Returns "" if no home directory can be
// determined.
func getGlobalConfigPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok && after != "" {
			return filepath.Join(after, "vernamfs", "config.json")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "vernamfs", "config.json")
}

// readConfigFile parses a JSONC config file at path. A missing file is not
// an error unless mustExist is set.
func readConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from CLI flag, env, or fixed-name lookup
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("read config %q: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("config %q: invalid JSONC: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("config %q: invalid JSON: %w", path, err)
	}

	return cfg, true, nil
}

// LoadConfig loads configuration with the following precedence (highest
// wins):
//  1. Built-in defaults
//  2. Global user config (~/.config/vernamfs/config.json, or
//     $XDG_CONFIG_HOME/vernamfs/config.json if env sets it)
//  3. Project config file at workDir's default location (.vernamfs.json),
//     or the file named by path if non-empty
//
// Missing-by-default files (global, or project when path is "") are not an
// error; an explicitly named missing path is.
func LoadConfig(workDir, path string, env []string) (Config, error) {
	cfg := DefaultConfig()

	if globalPath := getGlobalConfigPath(env); globalPath != "" {
		globalCfg, loaded, err := readConfigFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, globalCfg)
		}
	}

	mustExist := path != ""

	cfgFile := path
	if cfgFile == "" {
		cfgFile = filepath.Join(workDir, ConfigFileName)
	} else if !filepath.IsAbs(cfgFile) {
		cfgFile = filepath.Join(workDir, cfgFile)
	}

	fileCfg, loaded, err := readConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = mergeConfig(cfg, fileCfg)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.Padding != 0 {
		base.Padding = overlay.Padding
	}

	if overlay.MaxFiles != 0 {
		base.MaxFiles = overlay.MaxFiles
	}

	if overlay.MaxNameLength != 0 {
		base.MaxNameLength = overlay.MaxNameLength
	}

	return base
}
