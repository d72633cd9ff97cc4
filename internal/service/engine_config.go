package service

import (
	"time"

	"placement-engine-be/internal/config"
)

// EngineConfig carries the feature flags and templates the lifecycle services consult.
type EngineConfig struct {
	EmitEnabled                bool
	ArrivedDepartedDisabled    bool
	ReopenOnAppeal             bool
	BookingMadeTemplateId      string
	BookingWithdrawnTemplateId string
	PremisesFallbackEmail      string

	// Clock defaults to time.Now.
	Clock func() time.Time
}

func NewEngineConfig(cfg *config.Config) EngineConfig {
	return EngineConfig{
		EmitEnabled:                cfg.Events.EmitEnabled,
		ArrivedDepartedDisabled:    cfg.Events.ArrivedDepartedDisabled,
		ReopenOnAppeal:             cfg.Placement.ReopenOnAppeal,
		BookingMadeTemplateId:      cfg.Notify.BookingMadeTemplateId,
		BookingWithdrawnTemplateId: cfg.Notify.BookingWithdrawnTemplateId,
		PremisesFallbackEmail:      cfg.Notify.PremisesFallbackEmail,
	}
}

func (c EngineConfig) now() time.Time {
	if c.Clock != nil {
		return c.Clock().UTC()
	}
	return time.Now().UTC()
}

func dateOnly(t time.Time) string {
	return t.Format(time.DateOnly)
}
