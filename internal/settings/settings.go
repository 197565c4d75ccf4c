// Package settings persists the per-user application settings as a JSON
// document: one object per named layer plus a few top-level keys.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const FileName = "app-settings.json"

// Settings is a decoded JSON object.
type Settings map[string]any

// Clone deep-copies s so callers can mutate the result freely.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	return cloneValue(map[string]any(s)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Settings:
		return cloneValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Section returns the object stored under key, or nil.
func (s Settings) Section(key string) Settings {
	switch v := s[key].(type) {
	case map[string]any:
		return Settings(v)
	case Settings:
		return v
	}
	return nil
}

// Int reads a number under key. JSON numbers decode to float64, Go literals may be any int.
func (s Settings) Int(key string, def int) int {
	switch v := s[key].(type) {
	case float64:
		return int(v)
	case float32:
		return int(v)
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	}
	return def
}

func (s Settings) Float(key string, def float64) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return def
}

func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

func (s Settings) String(key string, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

// MergePatch applies patch to target following RFC 7386: objects merge
// recursively, null removes a key, every other value replaces.
func MergePatch(target, patch Settings) Settings {
	if target == nil {
		target = Settings{}
	}
	for k, pv := range patch {
		if pv == nil {
			delete(target, k)
			continue
		}
		pm, isObj := asObject(pv)
		if !isObj {
			target[k] = cloneValue(pv)
			continue
		}
		tm, _ := asObject(target[k])
		target[k] = map[string]any(MergePatch(tm, pm))
	}
	return target
}

func asObject(v any) (Settings, bool) {
	switch t := v.(type) {
	case map[string]any:
		return Settings(t), true
	case Settings:
		return t, true
	}
	return nil, false
}

// DefaultPath is <user config dir>/<appName>/app-settings.json.
func DefaultPath(appName string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, appName, FileName), nil
}

// Load reads the settings at path. It returns fs.ErrNotExist (wrapped) when
// there is no file yet.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if s == nil {
		s = Settings{}
	}
	return s, nil
}

// Save writes s tab-indented, creating the parent directory when needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "\t")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// LoadOrCreate merges the file at path over defaults. When the file does not
// exist the defaults are written there instead. The bool reports whether a
// file was read.
func LoadOrCreate(path string, defaults Settings) (Settings, bool, error) {
	merged := defaults.Clone()
	if merged == nil {
		merged = Settings{}
	}

	onDisk, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := Save(path, merged); err != nil {
			return merged, false, err
		}
		return merged, false, nil
	}
	if err != nil {
		return merged, false, err
	}
	return MergePatch(merged, onDisk), true, nil
}
