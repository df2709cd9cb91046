// Package config loads the zmc.toml project file.
package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// FileName is the name of the project file looked up in the working
// directory when no explicit path is given.
const FileName = "zmc.toml"

type Config struct {
	Build Build `toml:"build"`
	Log   Log   `toml:"log"`
}

type Build struct {
	Target    string `toml:"target"`
	OutDir    string `toml:"out_dir"`
	SourceExt string `toml:"source_ext"`
	Jobs      int    `toml:"jobs"`
}

type Log struct {
	Level string `toml:"level"`
	Color bool   `toml:"color"`
}

var logLevels = []string{"silent", "error", "warn", "verbose"}

func Default() *Config {
	return &Config{
		Build: Build{
			Target:    "c",
			OutDir:    ".",
			SourceExt: ".zmm",
			Jobs:      runtime.NumCPU(),
		},
		Log: Log{
			Level: "warn",
			Color: true,
		},
	}
}

// Load reads the project file at path over the defaults. A missing file is
// not an error when path is the default FileName.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}

		return nil, errors.Wrapf(err, "unable to open config file %s", path)
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file %s", path)
	}

	cfg, err := Parse(buff)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", filepath.Base(path))
	}

	return cfg, nil
}

// tomlConfig is the project file as it is encoded in TOML. Absent keys stay
// nil so they don't override the defaults.
type tomlConfig struct {
	Build struct {
		Target    *string `toml:"target"`
		OutDir    *string `toml:"out_dir"`
		SourceExt *string `toml:"source_ext"`
		Jobs      *int    `toml:"jobs"`
	} `toml:"build"`
	Log struct {
		Level *string `toml:"level"`
		Color *bool   `toml:"color"`
	} `toml:"log"`
}

// Parse decodes a TOML document over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	tc := &tomlConfig{}
	if err := toml.Unmarshal(data, tc); err != nil {
		return nil, err
	}

	cfg := Default()
	setString(&cfg.Build.Target, tc.Build.Target)
	setString(&cfg.Build.OutDir, tc.Build.OutDir)
	setString(&cfg.Build.SourceExt, tc.Build.SourceExt)
	setString(&cfg.Log.Level, tc.Log.Level)

	if tc.Build.Jobs != nil {
		cfg.Build.Jobs = *tc.Build.Jobs
	}

	if tc.Log.Color != nil {
		cfg.Log.Color = *tc.Log.Color
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (c *Config) Validate() error {
	switch c.Build.Target {
	case "c", "llvm":
	default:
		return errors.Errorf("build.target must be \"c\" or \"llvm\", got %q", c.Build.Target)
	}

	if c.Build.OutDir == "" {
		return errors.New("build.out_dir must not be empty")
	}

	if !strings.HasPrefix(c.Build.SourceExt, ".") || len(c.Build.SourceExt) < 2 {
		return errors.Errorf("build.source_ext must start with a dot, got %q", c.Build.SourceExt)
	}

	if c.Build.Jobs < 1 {
		return errors.Errorf("build.jobs must be at least 1, got %d", c.Build.Jobs)
	}

	for _, lvl := range logLevels {
		if c.Log.Level == lvl {
			return nil
		}
	}

	return errors.Errorf("log.level must be one of %s, got %q", strings.Join(logLevels, ", "), c.Log.Level)
}
