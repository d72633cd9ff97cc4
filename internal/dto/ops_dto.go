package dto

import (
	"placement-engine-be/pkg/events"
	"placement-engine-be/pkg/placement/status"

	"github.com/google/uuid"
)

type ApplicationStatusResponse struct {
	ApplicationId uuid.UUID     `json:"applicationId"`
	Status        status.Status `json:"status"`
}

type ApplicationEventsResponse struct {
	ApplicationId uuid.UUID          `json:"applicationId"`
	Events        []*events.Envelope `json:"events"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
