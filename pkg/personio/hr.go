package personio

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

// Requester is the subset of Client used by the company endpoints.
type Requester interface {
	Get(ctx context.Context, endpoint string, params any) (*Response, error)
	Post(ctx context.Context, endpoint string, data any) (*Response, error)
	Delete(ctx context.Context, endpoint string, params any) (*Response, error)
}

// HR wraps the company endpoints. Each read returns the envelope's data
// member untouched.
type HR struct {
	api Requester
}

func NewHR(api Requester) *HR {
	return &HR{api: api}
}

// Employees lists all employees.
// GET company/employees
func (h *HR) Employees(ctx context.Context) (json.RawMessage, error) {
	return h.get(ctx, "company/employees", nil)
}

// Employee fetches one employee.
// GET company/employees/{id}
func (h *HR) Employee(ctx context.Context, id string) (json.RawMessage, error) {
	endpoint, err := withID("company/employees", id)
	if err != nil {
		return nil, err
	}
	return h.get(ctx, endpoint, nil)
}

// Attendances lists attendance periods. Personio requires start_date,
// end_date and employees[] filters.
// GET company/attendances
func (h *HR) Attendances(ctx context.Context, params any) (json.RawMessage, error) {
	return h.get(ctx, "company/attendances", params)
}

// CreateAttendance creates attendance periods.
// POST company/attendances
func (h *HR) CreateAttendance(ctx context.Context, data any) (json.RawMessage, error) {
	return h.post(ctx, "company/attendances", data)
}

// DeleteAttendance removes an attendance period.
// DELETE company/attendances/{id}
func (h *HR) DeleteAttendance(ctx context.Context, id string) error {
	return h.delete(ctx, "company/attendances", id)
}

// TimeOffTypes lists the configured absence types.
// GET company/time-off-types
func (h *HR) TimeOffTypes(ctx context.Context, params any) (json.RawMessage, error) {
	return h.get(ctx, "company/time-off-types", params)
}

// TimeOffs lists absence periods.
// GET company/time-offs
func (h *HR) TimeOffs(ctx context.Context, params any) (json.RawMessage, error) {
	return h.get(ctx, "company/time-offs", params)
}

// TimeOff fetches one absence period.
// GET company/time-offs/{id}
func (h *HR) TimeOff(ctx context.Context, id string) (json.RawMessage, error) {
	endpoint, err := withID("company/time-offs", id)
	if err != nil {
		return nil, err
	}
	return h.get(ctx, endpoint, nil)
}

// CreateTimeOff creates an absence period.
// POST company/time-offs
func (h *HR) CreateTimeOff(ctx context.Context, data any) (json.RawMessage, error) {
	return h.post(ctx, "company/time-offs", data)
}

// DeleteTimeOff removes an absence period.
// DELETE company/time-offs/{id}
func (h *HR) DeleteTimeOff(ctx context.Context, id string) error {
	return h.delete(ctx, "company/time-offs", id)
}

func (h *HR) get(ctx context.Context, endpoint string, params any) (json.RawMessage, error) {
	resp, err := h.api.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return resp.Envelope().Data, nil
}

func (h *HR) post(ctx context.Context, endpoint string, data any) (json.RawMessage, error) {
	resp, err := h.api.Post(ctx, endpoint, data)
	if err != nil {
		return nil, err
	}
	return resp.Envelope().Data, nil
}

func (h *HR) delete(ctx context.Context, collection, id string) error {
	endpoint, err := withID(collection, id)
	if err != nil {
		return err
	}
	_, err = h.api.Delete(ctx, endpoint, nil)
	return err
}

func withID(collection, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", invalidArgument("id must not be empty", nil)
	}
	return collection + "/" + url.PathEscape(id), nil
}
