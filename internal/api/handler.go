package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/personio-adapter/pkg/personio"
)

// HRSource hands out the company endpoints of a tenant.
type HRSource interface {
	HR(ctx context.Context, tenant string) (*personio.HR, error)
	// Evict forgets the tenant's client and credentials.
	Evict(tenant string)
}

// HRHandler proxies the adapter API onto Personio's company endpoints.
type HRHandler struct {
	logger  *zap.Logger
	tenants HRSource
}

// NewHRHandler creates a new HRHandler.
func NewHRHandler(logger *zap.Logger, tenants HRSource) *HRHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HRHandler{logger: logger, tenants: tenants}
}

func (h *HRHandler) hr(c *fiber.Ctx) (*personio.HR, error) {
	return h.tenants.HR(c.UserContext(), c.Params("tenant"))
}

// ListEmployees handles GET /employees.
func (h *HRHandler) ListEmployees(c *fiber.Ctx) error {
	hr, err := h.hr(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, err := hr.Employees(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return respondData(c, fiber.StatusOK, data)
}

// GetEmployee handles GET /employees/:id.
func (h *HRHandler) GetEmployee(c *fiber.Ctx) error {
	hr, err := h.hr(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, err := hr.Employee(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return respondData(c, fiber.StatusOK, data)
}

// ListAttendances handles GET /attendances. Query parameters are passed
// through to Personio unchanged.
func (h *HRHandler) ListAttendances(c *fiber.Ctx) error {
	hr, err := h.hr(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, err := hr.Attendances(c.UserContext(), queryValues(c))
	if err != nil {
		return h.fail(c, err)
	}
	return respondData(c, fiber.StatusOK, data)
}

// CreateAttendance handles POST /attendances.
func (h *HRHandler) CreateAttendance(c *fiber.Ctx) error {
	var req AttendanceCreateRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	hr, err := h.hr(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, err := hr.CreateAttendance(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}

	h.logger.Info("personio.attendance_created",
		zap.String("tenant", c.Params("tenant")),
		zap.Int("periods", len(req.Attendances)))
	return respondData(c, fiber.StatusCreated, data)
}

// DeleteAttendance handles DELETE /attendances/:id.
func (h *HRHandler) DeleteAttendance(c *fiber.Ctx) error {
	hr, err := h.hr(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := hr.DeleteAttendance(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTimeOffTypes handles GET /time-off-types.
func (h *HRHandler) ListTimeOffTypes(c *fiber.Ctx) error {
	hr, err := h.hr(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, err := hr.TimeOffTypes(c.UserContext(), queryValues(c))
	if err != nil {
		return h.fail(c, err)
	}
	return respondData(c, fiber.StatusOK, data)
}

// ListTimeOffs handles GET /time-offs.
func (h *HRHandler) ListTimeOffs(c *fiber.Ctx) error {
	hr, err := h.hr(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, err := hr.TimeOffs(c.UserContext(), queryValues(c))
	if err != nil {
		return h.fail(c, err)
	}
	return respondData(c, fiber.StatusOK, data)
}

// GetTimeOff handles GET /time-offs/:id.
func (h *HRHandler) GetTimeOff(c *fiber.Ctx) error {
	hr, err := h.hr(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, err := hr.TimeOff(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return respondData(c, fiber.StatusOK, data)
}

// CreateTimeOff handles POST /time-offs.
func (h *HRHandler) CreateTimeOff(c *fiber.Ctx) error {
	var req TimeOffCreateRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	hr, err := h.hr(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, err := hr.CreateTimeOff(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}

	h.logger.Info("personio.time_off_created",
		zap.String("tenant", c.Params("tenant")),
		zap.Int64("employee_id", req.EmployeeID))
	return respondData(c, fiber.StatusCreated, data)
}

// DeleteTimeOff handles DELETE /time-offs/:id.
func (h *HRHandler) DeleteTimeOff(c *fiber.Ctx) error {
	hr, err := h.hr(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := hr.DeleteTimeOff(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// queryValues copies the request's query string, keeping repeated keys.
func queryValues(c *fiber.Ctx) url.Values {
	out := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		out.Add(string(k), string(v))
	})
	return out
}

func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(c.Body(), out)
}
