package reconcile

import "time"

// Config holds configuration for reconciliation passes and their schedule.
type Config struct {
	// Concurrency bounds how many members are reconciled at once.
	Concurrency int `mapstructure:"concurrency" default:"8"`
	// CallTimeoutSeconds bounds every external call (rank lookup, rename, role mutation).
	CallTimeoutSeconds int `mapstructure:"call_timeout_seconds" default:"10"`
	// ListTimeoutSeconds bounds listing every member of a guild, all pages included.
	ListTimeoutSeconds int `mapstructure:"list_timeout_seconds" default:"120"`
	// ProgressEvery emits a progress snapshot every N members.
	ProgressEvery int `mapstructure:"progress_every" default:"10"`
	// PruneMappedRoles allows removing mapped roles a member no longer qualifies for.
	// When false only the fallback role is ever removed.
	PruneMappedRoles bool `mapstructure:"prune_mapped_roles" default:"true"`
	// FallbackRoleName is used for guilds that never configured one.
	FallbackRoleName string `mapstructure:"fallback_role_name" default:"Visitor"`
	// SweepDelaySeconds is the wait before the first scheduled sweep after startup.
	SweepDelaySeconds int `mapstructure:"sweep_delay_seconds" default:"60"`
	// SweepIntervalMinutes is the period between scheduled sweeps.
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" default:"360"`
}

// CallTimeout returns the per-call timeout, defaulting to 10 seconds.
func (c Config) CallTimeout() time.Duration {
	if c.CallTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// ListTimeout returns the member listing timeout, defaulting to 2 minutes.
func (c Config) ListTimeout() time.Duration {
	if c.ListTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.ListTimeoutSeconds) * time.Second
}

// Workers returns the worker pool size, at least 1.
func (c Config) Workers() int {
	if c.Concurrency <= 0 {
		return 1
	}
	return c.Concurrency
}

// SweepDelay returns the initial sweep delay.
func (c Config) SweepDelay() time.Duration {
	if c.SweepDelaySeconds < 0 {
		return 0
	}
	return time.Duration(c.SweepDelaySeconds) * time.Second
}

// SweepInterval returns the sweep period, defaulting to 6 hours.
func (c Config) SweepInterval() time.Duration {
	if c.SweepIntervalMinutes <= 0 {
		return 6 * time.Hour
	}
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}
