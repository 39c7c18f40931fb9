package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/wippyai/faultkit/errors"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "FAULTKIT_"

// DefaultFiles are looked up in the working directory when Load gets no path.
var DefaultFiles = []string{"faultkit.yaml", "faultkit.yml"}

// Defaults returns the built-in configuration values as koanf keys.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"log.level":         "info",
		"log.format":        FormatConsole,
		"metrics.enabled":   false,
		"metrics.namespace": "faultkit",
		"default.action":    string(ActionReport),
	}
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration from defaults, the YAML file at path (or a
// default file in the working directory), the environment and flags, then
// validates it. flags may be nil; only flags explicitly set are applied.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if used := findConfigFile(path); used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: FAULTKIT_LOG_LEVEL -> log.level
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags: --log-level -> log.level
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || !strings.Contains(f.Name, "-") {
				return "", nil
			}
			return strings.Replace(f.Name, "-", ".", 1), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindMalformedInput).
			Cause(err).
			Detail("unable to decode config").
			Build()
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	cfg.Default.Action = Action(strings.ToLower(string(cfg.Default.Action)))

	handlers, err := normalizeHandlers(cfg.Handlers)
	if err != nil {
		return nil, err
	}
	cfg.Handlers = handlers

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps an environment variable to a koanf key. Handler variables
// carry the kind in the middle, so the field is split off the end:
// FAULTKIT_HANDLERS_RANGE_VIOLATION_ACTION -> handlers.range_violation.action.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))

	if rest, ok := strings.CutPrefix(key, "handlers_"); ok {
		for _, field := range []string{"action", "value"} {
			if kind, ok := strings.CutSuffix(rest, "_"+field); ok && kind != "" {
				return "handlers." + kind + "." + field
			}
		}
		return "handlers." + rest
	}
	return strings.Replace(key, "_", ".", 1)
}

// normalizeHandlers rewrites kind keys to their canonical names. Unknown
// keys are kept so Validate can report them; two keys naming the same kind
// are rejected.
func normalizeHandlers(in map[string]HandlerConfig) (map[string]HandlerConfig, error) {
	if len(in) == 0 {
		return in, nil
	}
	out := make(map[string]HandlerConfig, len(in))
	for _, name := range sortedKeys(in) {
		hc := in[name]
		hc.Action = Action(strings.ToLower(string(hc.Action)))

		key := name
		if kind, err := errors.ParseKind(name); err == nil {
			key = string(kind)
		}
		if _, dup := out[key]; dup {
			return nil, invalid([]string{"handlers", name}, "duplicate handler for %s", key)
		}
		out[key] = hc
	}
	return out, nil
}
