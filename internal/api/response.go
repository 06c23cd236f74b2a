package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/personio-adapter/internal/metrics"
	"github.com/Checker-Finance/personio-adapter/internal/registry"
	"github.com/Checker-Finance/personio-adapter/internal/secrets"
	"github.com/Checker-Finance/personio-adapter/pkg/personio"
)

// DataResponse wraps the data member of a Personio envelope.
type DataResponse struct {
	Data json.RawMessage `json:"data"`
}

// ErrorResponse is returned for every failed call.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"` // Personio's error code
	Kind  string `json:"kind"`
}

const (
	kindInvalidArgument = "invalid_argument"
	kindUnknownTenant   = "unknown_tenant"
	kindUpstreamHTTP    = "upstream_http"
	kindUpstreamFailure = "upstream_business"
	kindUnreachable     = "upstream_unreachable"
	kindInternal        = "internal"
)

func respondData(c *fiber.Ctx, status int, data json.RawMessage) error {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return c.Status(status).JSON(DataResponse{Data: data})
}

func badRequest(c *fiber.Ctx, err error) error {
	metrics.IncGatewayError(c.Route().Path, kindInvalidArgument)
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: err.Error(),
		Kind:  kindInvalidArgument,
	})
}

// classifyError maps an error to the gateway status, kind and Personio code.
//
//	invalid input               → 400
//	unknown tenant              → 404
//	Personio HTTP status ≥ 400  → same status
//	success=false on a 2xx/3xx  → 502
//	no response at all          → 502
func classifyError(err error) (status int, kind string, code int) {
	var apiErr *personio.Error
	switch {
	case errors.Is(err, personio.ErrInvalidArgument), errors.Is(err, registry.ErrInvalidTenant):
		return fiber.StatusBadRequest, kindInvalidArgument, 0
	case errors.Is(err, secrets.ErrTenantNotFound):
		return fiber.StatusNotFound, kindUnknownTenant, 0
	case errors.As(err, &apiErr):
		switch {
		case !apiErr.HasResponse():
			return fiber.StatusBadGateway, kindUnreachable, apiErr.Code
		case apiErr.Response.StatusCode >= fiber.StatusBadRequest:
			return apiErr.Response.StatusCode, kindUpstreamHTTP, apiErr.Code
		default:
			return fiber.StatusBadGateway, kindUpstreamFailure, apiErr.Code
		}
	default:
		return fiber.StatusInternalServerError, kindInternal, 0
	}
}

// fail logs err, evicts the tenant when Personio rejected its credentials,
// and writes the mapped error response.
func (h *HRHandler) fail(c *fiber.Ctx, err error) error {
	status, kind, code := classifyError(err)
	tenant := c.Params("tenant")
	route := c.Route().Path

	metrics.IncGatewayError(route, kind)

	if status == fiber.StatusUnauthorized {
		h.tenants.Evict(tenant)
	}

	fields := []zap.Field{
		zap.String("tenant", tenant),
		zap.String("route", route),
		zap.Int("status", status),
		zap.String("kind", kind),
		zap.Error(err),
	}
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("personio.gateway_failed", fields...)
	} else {
		h.logger.Warn("personio.gateway_rejected", fields...)
	}

	msg := err.Error()
	var apiErr *personio.Error
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	return c.Status(status).JSON(ErrorResponse{
		Error: msg,
		Code:  code,
		Kind:  kind,
	})
}
