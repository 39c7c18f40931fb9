package policy

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/faultkit/errors"
	"github.com/wippyai/faultkit/taxonomy"
)

// Action is what a configured handler does with a failure.
type Action string

const (
	// ActionReport reports the failure and marks it handled.
	ActionReport Action = "report"
	// ActionRecover reports the failure and substitutes the configured value.
	ActionRecover Action = "recover"
	// ActionRepropagate reports the failure and re-raises it.
	ActionRepropagate Action = "repropagate"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionReport, ActionRecover, ActionRepropagate:
		return true
	}
	return false
}

// Config is the complete faultkit configuration.
type Config struct {
	Handlers map[string]HandlerConfig `koanf:"handlers"`
	Default  HandlerConfig            `koanf:"default"`
	Log      LogConfig                `koanf:"log"`
	Metrics  MetricsConfig            `koanf:"metrics"`
	Rules    []RuleConfig             `koanf:"rules"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig enables the Prometheus reporter.
type MetricsConfig struct {
	Namespace string `koanf:"namespace"`
	Enabled   bool   `koanf:"enabled"`
}

// HandlerConfig describes one handler. Value is only used by recover.
type HandlerConfig struct {
	Value  any    `koanf:"value"`
	Action Action `koanf:"action"`
}

// RuleConfig is an extra classification rule.
type RuleConfig struct {
	Kind     string   `koanf:"kind"`
	Pattern  string   `koanf:"pattern"`
	Contains []string `koanf:"contains"`
}

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

func invalid(path []string, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseConfig, errors.KindMalformedInput).
		Path(path...).
		Detail(format, args...).
		Build()
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return invalid([]string{"log", "level"}, "unknown log level %q", c.Log.Level)
	}
	if c.Log.Format != FormatConsole && c.Log.Format != FormatJSON {
		return invalid([]string{"log", "format"}, "unknown log format %q", c.Log.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return invalid([]string{"metrics", "namespace"}, "namespace is required when metrics are enabled")
	}

	if !c.Default.Action.Valid() {
		return invalid([]string{"default", "action"}, "unknown action %q", c.Default.Action)
	}

	for _, name := range sortedKeys(c.Handlers) {
		if _, err := errors.ParseKind(name); err != nil {
			return invalid([]string{"handlers", name}, "unknown failure kind %q", name)
		}
		if a := c.Handlers[name].Action; !a.Valid() {
			return invalid([]string{"handlers", name, "action"}, "unknown action %q", a)
		}
	}

	for i, r := range c.Rules {
		if _, err := c.rule(i, r); err != nil {
			return err
		}
	}
	return nil
}

// Classifier builds a classifier consulting the configured rules.
func (c *Config) Classifier() (*taxonomy.Classifier, error) {
	rules := make([]taxonomy.Rule, 0, len(c.Rules))
	for i, r := range c.Rules {
		rule, err := c.rule(i, r)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return taxonomy.NewClassifier(rules...)
}

func (c *Config) rule(i int, r RuleConfig) (taxonomy.Rule, error) {
	path := []string{"rules", fmt.Sprint(i)}

	kind, err := errors.ParseKind(r.Kind)
	if err != nil {
		return taxonomy.Rule{}, invalid(append(path, "kind"), "unknown failure kind %q", r.Kind)
	}
	rule := taxonomy.Rule{Kind: kind, Contains: r.Contains}

	if r.Pattern != "" {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return taxonomy.Rule{}, errors.New(errors.PhaseConfig, errors.KindMalformedInput).
				Path(append(path, "pattern")...).
				Cause(err).
				Detail("invalid pattern %q", r.Pattern).
				Build()
		}
		rule.Pattern = re
	}
	if rule.Pattern == nil && len(strings.Join(r.Contains, "")) == 0 {
		return taxonomy.Rule{}, invalid(path, "needs a pattern or contains list")
	}
	return rule, nil
}

func sortedKeys(m map[string]HandlerConfig) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
