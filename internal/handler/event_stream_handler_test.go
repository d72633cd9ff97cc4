package handler

import (
	"net/http/httptest"
	"testing"
	"time"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/internal/pkg/serverutils"
	internalWS "placement-engine-be/internal/websocket"
	"placement-engine-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []events.Type
		wantErr bool
	}{
		{name: "empty means all", raw: ""},
		{name: "list", raw: "booking-made, person-arrived", want: []events.Type{events.TypeBookingMade, events.TypePersonArrived}},
		{name: "legacy alias", raw: "booking-date-changed", want: []events.Type{events.TypeBookingChanged}},
		{name: "unknown", raw: "booking-made,tea-made", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTypes(tt.raw)
			if tt.wantErr {
				var validationErr *apperror.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Contains(t, validationErr.Fields, "$.types")
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, len(tt.want))
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestEventStreamHandler_Handshake(t *testing.T) {
	const secret = "stream-secret"
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	NewEventStreamHandler(internalWS.NewHub(logger.NewNopLogger()), logger.NewNopLogger()).
		RegisterRoutes(app.Group("/api"), serverutils.JwtMiddleware(secret))

	sign := func(roles ...entity.UserRole) string {
		var list []interface{}
		for _, r := range roles {
			list = append(list, string(r))
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": uuid.NewString(),
			"roles":   list,
			"exp":     time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(secret))
		require.NoError(t, err)
		return signed
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{name: "no token", query: "", wantStatus: fiber.StatusUnauthorized},
		{name: "not a workflow manager", query: "?token=" + sign(entity.UserRoleAssessor), wantStatus: fiber.StatusForbidden},
		{name: "bad filter", query: "?types=tea-made&token=" + sign(entity.UserRoleWorkflowManager), wantStatus: fiber.StatusBadRequest},
		{name: "plain http", query: "?token=" + sign(entity.UserRoleWorkflowManager), wantStatus: fiber.StatusUpgradeRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/ops/stream"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
