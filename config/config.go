// Package config loads the supervisor's run configuration: defaults, then an
// optional JSON file, using the teacher's koanf provider stack. Any key in
// the file that does not map to a recognized field is a hard error rather
// than being silently ignored.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/ralph-core/ralph-core/internal/errs"
)

// ACPConfig groups settings specific to the ACP adapter.
type ACPConfig struct {
	PermissionMode string `json:"permission_mode" koanf:"permission_mode"`
}

// Config is the full set of recognized run configuration keys.
type Config struct {
	LogLevel string `json:"log_level" koanf:"log_level"`
	Debug    bool   `json:"debug" koanf:"debug"`

	Agent      string `json:"agent" koanf:"agent"`
	AgentModel string `json:"agent_model" koanf:"agent_model"`
	ProjectDir string `json:"project_dir" koanf:"project_dir"`
	PromptFile string `json:"prompt_file" koanf:"prompt_file"`

	// MaxIterations, MaxRuntimeSeconds, MaxCost, and MaxConsecutiveFailures
	// are SafetyGuard ceilings: a negative value means the rule is
	// unconfigured, zero is a literal ceiling that trips on the very first
	// check.
	MaxIterations           int     `json:"max_iterations" koanf:"max_iterations"`
	MaxRuntimeSeconds       float64 `json:"max_runtime_seconds" koanf:"max_runtime_seconds"`
	MaxCost                 float64 `json:"max_cost" koanf:"max_cost"`
	MaxConsecutiveFailures  int     `json:"max_consecutive_failures" koanf:"max_consecutive_failures"`
	LoopSimilarityThreshold float64 `json:"loop_similarity_threshold" koanf:"loop_similarity_threshold"`
	LoopDetectionK          int     `json:"loop_detection_k" koanf:"loop_detection_k"`
	InterIterationSleepSecs float64 `json:"inter_iteration_sleep_seconds" koanf:"inter_iteration_sleep_seconds"`
	CheckpointDepth         int     `json:"checkpoint_depth" koanf:"checkpoint_depth"`

	EnableOrchestration bool `json:"enable_orchestration" koanf:"enable_orchestration"`
	EnableValidation    bool `json:"enable_validation" koanf:"enable_validation"`

	CompletionMarker       string `json:"completion_marker" koanf:"completion_marker"`
	AdapterTimeoutSeconds  float64 `json:"adapter_timeout_seconds" koanf:"adapter_timeout_seconds"`
	MaxOutputBytes         int    `json:"max_output_bytes" koanf:"max_output_bytes"`

	ACP ACPConfig `json:"acp" koanf:"acp"`
}

// recognizedKeys returns the set of dotted koanf keys this struct exposes,
// derived from the koanf tags so the set can't drift from the struct.
func recognizedKeys() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := strings.Split(f.Tag.Get("koanf"), ",")[0]
		if f.Type.Kind() == reflect.Struct {
			sub := t.Field(i).Type
			for j := 0; j < sub.NumField(); j++ {
				subTag := strings.Split(sub.Field(j).Tag.Get("koanf"), ",")[0]
				keys[tag+"."+subTag] = true
			}
			continue
		}
		keys[tag] = true
	}
	return keys
}

// checkUnrecognized walks k's flattened key set and fails on the first one
// absent from recognizedKeys.
func checkUnrecognized(k *koanf.Koanf) error {
	known := recognizedKeys()
	for _, key := range k.Keys() {
		if !known[key] {
			return fmt.Errorf("%w: unrecognized configuration key %q", errs.ErrConfig, key)
		}
	}
	return nil
}

// Load reads configuration from path, layering it over Default(). A missing
// file is not an error — Default() is returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", errs.ErrConfig, path, err)
	}
	if err := checkUnrecognized(k); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", errs.ErrConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromBytes parses data the same way Load parses a file; used by tests.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), koanfjson.Parser()); err != nil {
		return nil, fmt.Errorf("%w: parsing bytes: %v", errs.ErrConfig, err)
	}
	if err := checkUnrecognized(k); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing bytes: %v", errs.ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validAgents = map[string]bool{"auto": true, "claude": true, "gemini": true, "qchat": true, "acp": true}

// Validate rejects structurally invalid values Load's unmarshal step can't
// catch on its own.
func (c *Config) Validate() error {
	if !validAgents[c.Agent] {
		return fmt.Errorf("%w: unknown agent %q", errs.ErrConfig, c.Agent)
	}
	if c.LoopSimilarityThreshold < 0 || c.LoopSimilarityThreshold > 1 {
		return fmt.Errorf("%w: loop_similarity_threshold must be in [0,1]", errs.ErrConfig)
	}
	if c.PromptFile == "" {
		return fmt.Errorf("%w: prompt_file is required", errs.ErrConfig)
	}
	return nil
}
