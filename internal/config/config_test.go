package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DOMAIN_EVENTS_EMIT_ENABLED", "")
	t.Setenv("PLACEMENT_REOPEN_ON_APPEAL", "")

	cfg := Load()
	assert.True(t, cfg.Events.EmitEnabled)
	assert.False(t, cfg.Events.ArrivedDepartedDisabled)
	assert.True(t, cfg.Placement.ReopenOnAppeal)
	assert.Equal(t, "channel", cfg.Events.Sink)
	assert.Equal(t, 5*time.Minute, cfg.Lookup.CacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DOMAIN_EVENTS_EMIT_ENABLED", "false")
	t.Setenv("DOMAIN_EVENTS_ARRIVED_DEPARTED_DISABLED", "true")
	t.Setenv("DOMAIN_EVENTS_SINK", "nats")
	t.Setenv("COMMUNITY_API_CACHE_TTL", "30s")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := Load()
	assert.False(t, cfg.Events.EmitEnabled)
	assert.True(t, cfg.Events.ArrivedDepartedDisabled)
	assert.Equal(t, "nats", cfg.Events.Sink)
	assert.Equal(t, 30*time.Second, cfg.Lookup.CacheTTL)
	assert.Equal(t, 587, cfg.SMTP.Port)
}
