package offender

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"placement-engine-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		switch r.URL.Path {
		case "/offenders/crn/X320741":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"crn":"X320741","nomsNumber":"A1234AB","name":"Jo Bloggs"}`))
		case "/offenders/crn/LAO":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetOffenderByCrn(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	tests := []struct {
		name  string
		crn   string
		check func(t *testing.T, p *PersonDetails, err error)
	}{
		{"found", "X320741", func(t *testing.T, p *PersonDetails, err error) {
			require.NoError(t, err)
			assert.Equal(t, "A1234AB", p.NomsNumber)
		}},
		{"restricted", "LAO", func(t *testing.T, _ *PersonDetails, err error) {
			assert.True(t, apperror.IsUnauthorised(err))
		}},
		{"missing", "NOPE", func(t *testing.T, _ *PersonDetails, err error) {
			assert.True(t, apperror.IsNotFound(err))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.GetOffenderByCrn(ctx, tt.crn)
			tt.check(t, p, err)
		})
	}
}

func TestCachedLookup_HitsUpstreamOnce(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	c := NewClient(srv.URL, time.Second)
	cached := NewCachedLookup(c, c, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := cached.GetOffenderByCrn(ctx, "X320741")
		require.NoError(t, err)
		assert.Equal(t, "Jo Bloggs", p.Name)
	}
	assert.Equal(t, 1, hits)

	_, err := cached.GetStaffByUserId(ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
	_, _ = cached.GetOffenderByCrn(ctx, "NOPE")
	_, _ = cached.GetOffenderByCrn(ctx, "NOPE")
	assert.Equal(t, 4, hits)
}
