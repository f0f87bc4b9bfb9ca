package config

import (
	// Go Internal Packages
	"os"
	"strings"

	// Local Packages
	errors "bus-chat/errors"

	// External Packages
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
)

// EnvPrefix marks environment variables that override the config.
// BUSCHAT_KAFKA__POLL_TIMEOUT sets kafka.poll_timeout.
const EnvPrefix = "BUSCHAT_"

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// Load layers the default configuration, the YAML file at path (skipped when
// it does not exist), BUSCHAT_ environment variables and finally overrides,
// which are flat dotted keys such as "kafka.topic".
func Load(path string, overrides map[string]any) (*koanf.Koanf, Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(DefaultConfig), yaml.Parser()); err != nil {
		return nil, Config{}, errors.E(errors.Invalid, "default config", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, Config{}, errors.E(errors.Invalid, "config file "+path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, Config{}, errors.E(errors.Invalid, "environment", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, Config{}, errors.E(errors.Invalid, "flags", err)
		}
	}

	conf := Config{}
	if err := k.Unmarshal("", &conf); err != nil {
		return nil, Config{}, errors.E(errors.Invalid, "unmarshal config", err)
	}
	return k, conf, nil
}
