// Package config provides configuration management for the key sender:
// the JSON document, built-in defaults, CLI overrides and validation.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"pks/internal/keys"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// SafetyFloor is the minimum repeating interval accepted for independent
// timers. Anything faster is rejected up front rather than hammering the
// target process.
const SafetyFloor = 50 * time.Millisecond

// DefaultInterval is used when a sequence or independent-key token omits
// its interval.
const DefaultInterval = time.Second

// Duration is a time.Duration that marshals as "<n>ms" and unmarshals from
// "<n>ms", "<n>s", "<n>m" or a bare integer meaning milliseconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Not a string; try a bare number of milliseconds.
		var ms int64
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("%w: %s", keys.ErrInvalidDuration, string(data))
		}
		if ms < 0 {
			return fmt.Errorf("%w: negative value %d", keys.ErrInvalidDuration, ms)
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	parsed, err := keys.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(keys.FormatDuration(time.Duration(d)))
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// KeyAction is one step of a key sequence: send Key, then wait
// IntervalAfter before the next step.
type KeyAction struct {
	Key           string   `json:"key"`
	IntervalAfter Duration `json:"interval_after"`
}

// IndependentKey is a key fired on its own repeating cadence.
type IndependentKey struct {
	Key      string   `json:"key"`
	Interval Duration `json:"interval"`
}

// Config is the merged configuration document. Exactly one of KeySequence
// or IndependentKeys must be populated once validated.
type Config struct {
	ProcessName     string           `json:"process_name"`
	KeySequence     []KeyAction      `json:"key_sequence"`
	IndependentKeys []IndependentKey `json:"independent_keys"`
	MaxRetries      int              `json:"max_retries"`
	PauseHotkey     string           `json:"pause_hotkey"`
	Verbose         bool             `json:"verbose"`
	LoopSequence    bool             `json:"loop_sequence"`
	RepeatCount     int              `json:"repeat_count"`
}

// Default returns the built-in defaults. Key actions are left empty; the
// caller must supply at least one key via flags or a config file.
func Default() *Config {
	return &Config{
		MaxRetries:   10,
		PauseHotkey:  "ctrl+alt+r",
		LoopSequence: true,
	}
}

// LoadFile reads a JSON config file. Fields absent from the document keep
// their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveFile writes the document as indented JSON.
func (c *Config) SaveFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Overrides carries explicit CLI values. Nil fields were not provided and
// leave the underlying document untouched; CLI always wins over the file.
type Overrides struct {
	Process         *string
	Key             *string
	Interval        *string
	Sequence        *string
	IndependentKeys *string
	MaxRetries      *int
	PauseHotkey     *string
	Verbose         *bool
	LoopSequence    *bool
	RepeatCount     *int
}

// Apply merges CLI overrides into the document. Key selection precedence
// mirrors the CLI contract: -independent-keys beats -sequence beats
// -key/-interval, and selecting one mode clears the other.
func (c *Config) Apply(o Overrides) error {
	if o.Process != nil {
		c.ProcessName = *o.Process
	}
	if o.MaxRetries != nil {
		c.MaxRetries = *o.MaxRetries
	}
	if o.PauseHotkey != nil {
		c.PauseHotkey = *o.PauseHotkey
	}
	if o.Verbose != nil {
		c.Verbose = *o.Verbose
	}
	if o.LoopSequence != nil {
		c.LoopSequence = *o.LoopSequence
	}
	if o.RepeatCount != nil {
		c.RepeatCount = *o.RepeatCount
	}

	switch {
	case o.IndependentKeys != nil:
		parsed, err := ParseIndependentKeys(*o.IndependentKeys)
		if err != nil {
			return err
		}
		c.IndependentKeys = parsed
		c.KeySequence = nil
	case o.Sequence != nil:
		parsed, err := ParseSequence(*o.Sequence)
		if err != nil {
			return err
		}
		c.KeySequence = parsed
		c.IndependentKeys = nil
	case o.Key != nil:
		interval := DefaultInterval
		if o.Interval != nil {
			d, err := keys.ParseDuration(*o.Interval)
			if err != nil {
				return err
			}
			interval = d
		}
		c.KeySequence = []KeyAction{{Key: *o.Key, IntervalAfter: Duration(interval)}}
		c.IndependentKeys = nil
	}
	return nil
}

// ParseSequence parses the CLI sequence form "key[:interval],key[:interval],...".
func ParseSequence(s string) ([]KeyAction, error) {
	var actions []KeyAction
	for _, part := range strings.Split(s, ",") {
		key, interval, err := parseKeyInterval(part)
		if err != nil {
			return nil, err
		}
		if key == "" {
			continue
		}
		actions = append(actions, KeyAction{Key: key, IntervalAfter: Duration(interval)})
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: empty key sequence", ErrInvalid)
	}
	return actions, nil
}

// ParseIndependentKeys parses the CLI form "key[:interval];key[:interval];...".
func ParseIndependentKeys(s string) ([]IndependentKey, error) {
	var parsed []IndependentKey
	for _, part := range strings.Split(s, ";") {
		key, interval, err := parseKeyInterval(part)
		if err != nil {
			return nil, err
		}
		if key == "" {
			continue
		}
		parsed = append(parsed, IndependentKey{Key: key, Interval: Duration(interval)})
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: empty independent keys", ErrInvalid)
	}
	return parsed, nil
}

func parseKeyInterval(part string) (string, time.Duration, error) {
	part = strings.TrimSpace(part)
	if part == "" {
		return "", 0, nil
	}
	key, intervalTok, found := strings.Cut(part, ":")
	key = strings.TrimSpace(key)
	if !found {
		return key, DefaultInterval, nil
	}
	interval, err := keys.ParseDuration(intervalTok)
	if err != nil {
		return "", 0, fmt.Errorf("interval for key %q: %w", key, err)
	}
	return key, interval, nil
}

// Validate checks the merged document. It fails fast with a wrapped
// ErrInvalid naming the offending field; nothing invalid reaches the
// scheduler.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProcessName) == "" {
		return fmt.Errorf("%w: process_name is required", ErrInvalid)
	}
	if len(c.KeySequence) > 0 && len(c.IndependentKeys) > 0 {
		return fmt.Errorf("%w: key_sequence and independent_keys are mutually exclusive", ErrInvalid)
	}
	if len(c.KeySequence) == 0 && len(c.IndependentKeys) == 0 {
		return fmt.Errorf("%w: no key actions configured", ErrInvalid)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: max_retries must be at least 1", ErrInvalid)
	}
	for i, a := range c.KeySequence {
		if _, err := keys.ParseCombo(a.Key); err != nil {
			return fmt.Errorf("%w: key_sequence[%d]: %v", ErrInvalid, i, err)
		}
		if a.IntervalAfter < 0 {
			return fmt.Errorf("%w: key_sequence[%d]: negative interval", ErrInvalid, i)
		}
	}
	for i, k := range c.IndependentKeys {
		if _, err := keys.ParseCombo(k.Key); err != nil {
			return fmt.Errorf("%w: independent_keys[%d]: %v", ErrInvalid, i, err)
		}
		if k.Interval.Std() < SafetyFloor {
			return fmt.Errorf("%w: independent_keys[%d]: interval %v below safety floor %v",
				ErrInvalid, i, k.Interval.Std(), SafetyFloor)
		}
	}
	if c.PauseHotkey != "" {
		if _, err := keys.ParseCombo(c.PauseHotkey); err != nil {
			return fmt.Errorf("%w: pause_hotkey: %v", ErrInvalid, err)
		}
	}
	return nil
}

// IndependentMode reports whether the document configures independent
// timers rather than an ordered sequence.
func (c *Config) IndependentMode() bool {
	return len(c.IndependentKeys) > 0
}

// SequenceDescription renders the sequence for the startup summary,
// e.g. "'r' (1000ms) → 'space' (500ms)".
func (c *Config) SequenceDescription() string {
	parts := make([]string, len(c.KeySequence))
	for i, a := range c.KeySequence {
		parts[i] = fmt.Sprintf("'%s' (%dms)", a.Key, a.IntervalAfter.Std().Milliseconds())
	}
	return strings.Join(parts, " → ")
}

// IndependentDescription renders the independent timers for the startup
// summary, e.g. "'r' every 1000ms, 'a' every 5000ms".
func (c *Config) IndependentDescription() string {
	parts := make([]string, len(c.IndependentKeys))
	for i, k := range c.IndependentKeys {
		parts[i] = fmt.Sprintf("'%s' every %dms", k.Key, k.Interval.Std().Milliseconds())
	}
	return strings.Join(parts, ", ")
}

// TotalCycle returns the duration of one full pass over the sequence.
func (c *Config) TotalCycle() time.Duration {
	var total time.Duration
	for _, a := range c.KeySequence {
		total += a.IntervalAfter.Std()
	}
	return total
}
