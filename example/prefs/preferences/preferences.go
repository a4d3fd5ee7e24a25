// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package preferences holds the process wide user preferences.
package preferences

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/z5labs/keystone/config"
	"github.com/z5labs/keystone/notify"
	"github.com/z5labs/keystone/singleton"
)

// Member names raised on change.
const (
	NameMember            = "Name"
	LogLevelMember        = "LogLevel"
	RefreshIntervalMember = "RefreshInterval"
)

// EnvPrefix is the prefix of environment variables which override the defaults.
const EnvPrefix = "PREFS_"

//go:embed default.yaml
var defaultConfig []byte

type values struct {
	Name            string        `config:"name"`
	LogLevel        string        `config:"log_level"`
	RefreshInterval time.Duration `config:"refresh_interval"`
}

// InvalidRefreshIntervalError is returned for non-positive refresh intervals.
type InvalidRefreshIntervalError struct {
	Interval time.Duration
}

// Error implements the [builtin.error] interface.
func (e InvalidRefreshIntervalError) Error() string {
	return fmt.Sprintf("refresh interval must be positive: %s", e.Interval)
}

// Preferences notifies observers whenever one of its values changes.
type Preferences struct {
	notify.Changes

	name            *notify.Property[string]
	logLevel        *notify.Property[slog.Level]
	refreshInterval *notify.Property[time.Duration]
}

// Default returns the shared Preferences, loading them on first use.
func Default() (*Preferences, error) {
	return singleton.Instance[Preferences]()
}

// Init loads the embedded defaults overridden by any PREFS_ prefixed
// environment variables.
func (p *Preferences) Init() error {
	m, err := config.Read(
		config.FromYaml(bytes.NewReader(defaultConfig)),
		config.FromEnv(EnvPrefix),
	)
	if err != nil {
		return err
	}

	var v values
	err = m.Unmarshal(&v)
	if err != nil {
		return err
	}

	var level slog.Level
	err = level.UnmarshalText([]byte(v.LogLevel))
	if err != nil {
		return err
	}
	if v.RefreshInterval <= 0 {
		return InvalidRefreshIntervalError{Interval: v.RefreshInterval}
	}

	p.name = notify.NewProperty(&p.Changes, NameMember, v.Name)
	p.logLevel = notify.NewProperty(&p.Changes, LogLevelMember, level)
	p.refreshInterval = notify.NewProperty(&p.Changes, RefreshIntervalMember, v.RefreshInterval)
	return nil
}

// Name returns the display name.
func (p *Preferences) Name() string {
	return p.name.Get()
}

// SetName updates the display name.
func (p *Preferences) SetName(name string) error {
	return p.name.Set(name)
}

// LogLevel returns the minimum level logged.
func (p *Preferences) LogLevel() slog.Level {
	return p.logLevel.Get()
}

// SetLogLevel updates the minimum level logged.
func (p *Preferences) SetLogLevel(level slog.Level) error {
	return p.logLevel.Set(level)
}

// RefreshInterval returns how often dependent state should be refreshed.
func (p *Preferences) RefreshInterval() time.Duration {
	return p.refreshInterval.Get()
}

// SetRefreshInterval updates the refresh interval.
func (p *Preferences) SetRefreshInterval(d time.Duration) error {
	if d <= 0 {
		return InvalidRefreshIntervalError{Interval: d}
	}
	return p.refreshInterval.Set(d)
}
