package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const defaultConfigFile = "bfjit.toml"

// Config holds defaults for command flags, loaded from a TOML file like:
//
//	strategy = "optimized-ops"
//	tape-size = 30000
//	timeout = "10s"
//	verbose = 1
//	jobs = 4
type Config struct {
	Strategy string   `toml:"strategy"`
	TapeSize int      `toml:"tape-size"`
	Timeout  duration `toml:"timeout"`
	Verbose  int      `toml:"verbose"`
	Jobs     int      `toml:"jobs"`
}

type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// loadConfig loads a config file; an empty path loads bfjit.toml from the
// working directory if it exists. Unknown keys are an error.
func loadConfig(path string) (conf Config, err error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	md, err := toml.DecodeFile(path, &conf)
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	} else if err != nil {
		return conf, fmt.Errorf("config %v: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return conf, fmt.Errorf("config %v: unknown keys %v", path, strings.Join(keys, ", "))
	}
	return conf, nil
}
