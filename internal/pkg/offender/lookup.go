// Package offender resolves people and staff from the community system. Only the read paths
// the engine needs for event payloads and notification addresses are covered.
package offender

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"placement-engine-be/internal/pkg/apperror"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

type PersonDetails struct {
	Crn        string `json:"crn"`
	NomsNumber string `json:"nomsNumber"`
	Name       string `json:"name"`
}

type StaffDetails struct {
	UserId    uuid.UUID `json:"userId"`
	StaffCode string    `json:"staffCode"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

type Lookup interface {
	GetOffenderByCrn(ctx context.Context, crn string) (*PersonDetails, error)
}

type StaffLookup interface {
	GetStaffByUserId(ctx context.Context, userId uuid.UUID) (*StaffDetails, error)
}

// Client talks to the community API over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetOffenderByCrn(ctx context.Context, crn string) (*PersonDetails, error) {
	var person PersonDetails
	if err := c.get(ctx, "/offenders/crn/"+crn, "offender", crn, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

func (c *Client) GetStaffByUserId(ctx context.Context, userId uuid.UUID) (*StaffDetails, error) {
	var staff StaffDetails
	if err := c.get(ctx, "/staff/"+userId.String(), "staff", userId.String(), &staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (c *Client) get(ctx context.Context, path, entity, id string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "get %s", entity)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return &apperror.NotFoundError{Entity: entity, Id: id}
	case http.StatusForbidden, http.StatusUnauthorized:
		return apperror.Unauthorised(fmt.Sprintf("access to %s %s is restricted", entity, id))
	default:
		return fmt.Errorf("get %s %s: unexpected status %d", entity, id, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decode %s", entity)
	}
	return nil
}
