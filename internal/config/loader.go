package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix scopes every environment override: "provider.api_key" is read
// from RESONANCE_PROVIDER_API_KEY.
const envPrefix = "RESONANCE"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range configKeys(reflect.TypeOf(Config{}), "") {
		// AutomaticEnv only serves keys viper already knows, so env-only
		// settings must be bound up front.
		_ = v.BindEnv(k)
	}
	return v
}

// configKeys lists the dotted mapstructure keys of every leaf field of t.
func configKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + tag
		if f.Type.Kind() == reflect.Struct {
			keys = append(keys, configKeys(f.Type, key+".")...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// LoadDotEnv loads KEY=VALUE pairs from files into the process environment
// without overriding variables that are already set. Missing files are
// skipped; with no arguments ".env" is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		switch {
		case err == nil, errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("config: failed to load env file %q: %w", f, err)
		}
	}
	return nil
}

// Load reads the YAML file at path, overlays RESONANCE_* variables, fills
// defaults and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
	}
	return decode(v)
}

// LoadFromEnv builds a Config from RESONANCE_* variables alone.
func LoadFromEnv() (*Config, error) {
	return decode(newViper())
}

// LoadOrEnv loads path when it is set, otherwise the environment.
func LoadOrEnv(path string) (*Config, error) {
	if path == "" {
		return LoadFromEnv()
	}
	return Load(path)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch re-reads path whenever it is written and hands the result to
// onChange. An edit that fails to decode or validate goes to onError, when
// set, and onChange is skipped. Watch returns immediately.
func Watch(path string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(path)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		switch {
		case err == nil:
			onChange(cfg)
		case onError != nil:
			onError(err)
		}
	})
	v.WatchConfig()
}

//Personal.AI order the ending
