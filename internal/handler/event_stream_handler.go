package handler

import (
	"strings"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/internal/pkg/serverutils"
	internalWS "placement-engine-be/internal/websocket"
	"placement-engine-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const moduleStream = "EVENT_STREAM_HANDLER"

// EventStreamHandler upgrades workflow manager sessions to a websocket that receives every
// domain event the consumer handles.
type EventStreamHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewEventStreamHandler(hub *internalWS.Hub, log logger.ILogger) *EventStreamHandler {
	return &EventStreamHandler{hub: hub, logger: log}
}

// ParseTypes reads a comma separated event type filter. Legacy names resolve to their
// current type.
func ParseTypes(raw string) (map[events.Type]struct{}, error) {
	out := make(map[events.Type]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t := events.Canonical(events.Type(part))
		if !events.Known(t) {
			v := apperror.NewValidationErrors()
			v.Add("$.types", "isInvalid")
			return nil, v.Err()
		}
		out[t] = struct{}{}
	}
	return out, nil
}

func (h *EventStreamHandler) ServeWs(c *fiber.Ctx) error {
	actor, ok := serverutils.ActorFrom(c)
	if !ok || !actor.HasRole(entity.UserRoleWorkflowManager) {
		return apperror.Unauthorised("the event stream requires the workflow manager role")
	}

	types, err := ParseTypes(c.Query("types"))
	if err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info(moduleStream, "Starting event stream session", map[string]interface{}{"user_id": actor.Id.String()})
		client := &internalWS.Client{Hub: h.hub, Conn: conn, UserID: actor.Id, Types: types, Send: make(chan []byte, 256)}
		client.Serve()
		h.logger.Info(moduleStream, "Event stream session ended", map[string]interface{}{"user_id": actor.Id.String()})
	})(c)
}

func (h *EventStreamHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/ops/stream", auth, h.ServeWs)
}
