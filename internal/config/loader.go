package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/substantialcattle5/bulkmv/internal/constants"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"fatal":      "fatal",
	"implicit":   "implicit",
	"autosolve":  "autosolve",
	"sort":       "sort",
	"quiet":      "quiet",
	"verbose":    "verbose",
	"dry-run":    "dry_run",
	"yes":        "assume_yes",
	"workers":    "workers",
	"editor":     "editor",
	"arena-size": "arena_size",
}

// Load resolves options from defaults, the config file, BULKMV_* environment
// variables and any of flags that were set, in increasing priority. An empty
// configPath searches for .bulkmv.yaml in the working directory and $HOME;
// a missing file is not an error.
func Load(configPath string, flags *pflag.FlagSet) (*Options, string, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(constants.ConfigType)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(constants.ConfigName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return nil, "", fmt.Errorf("unmarshal config: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, "", fmt.Errorf("validate config: %w", err)
	}
	return &opts, v.ConfigFileUsed(), nil
}

func applyDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("fatal", d.Fatal)
	v.SetDefault("implicit", d.Implicit)
	v.SetDefault("autosolve", d.AutoSolve)
	v.SetDefault("sort", d.Sort)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("dry_run", d.DryRun)
	v.SetDefault("assume_yes", d.AssumeYes)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("editor", d.Editor)
	v.SetDefault("arena_size", d.ArenaSize)
}

// DefaultPath returns $HOME/.bulkmv.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(home, constants.ConfigName+"."+constants.ConfigType), nil
}

// WriteFile stores opts at path. An existing file is only replaced when
// force is set.
func WriteFile(path string, opts Options, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s", path)
	} else if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	data, err := opts.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, constants.StandardFilePerms); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
