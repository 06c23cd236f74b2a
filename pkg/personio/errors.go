package personio

import (
	"errors"
	"fmt"
)

const defaultErrorMessage = "an API error occurred"

// ErrInvalidArgument matches every InvalidArgumentError via errors.Is.
var ErrInvalidArgument = errors.New("personio: invalid argument")

// InvalidArgumentError reports caller input rejected before any I/O.
type InvalidArgumentError struct {
	Reason string
	Err    error
}

func (e *InvalidArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("personio: invalid argument: %s: %v", e.Reason, e.Err)
	}
	return "personio: invalid argument: " + e.Reason
}

func (e *InvalidArgumentError) Unwrap() error { return e.Err }

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func invalidArgument(reason string, err error) error {
	return &InvalidArgumentError{Reason: reason, Err: err}
}

// Error is returned for every failed call that got past argument validation.
//
// Response is nil when the request never produced a response (connection
// refused, timeout, DNS failure...); Cause then holds the transport error.
// When Response is set the server rejected the request, either with an HTTP
// error status or with success=false in the envelope.
type Error struct {
	Request  *Request
	Response *Response
	Message  string
	Code     int
	Cause    error
}

// newError applies the defaulting rules: a response supplies the reason
// phrase and status code, a bare cause supplies its own text and code.
func newError(req *Request, resp *Response, message string, code int, cause error) *Error {
	e := &Error{
		Request:  req,
		Response: resp,
		Message:  message,
		Code:     code,
		Cause:    cause,
	}

	switch {
	case resp != nil:
		if e.Message == "" {
			e.Message = resp.Reason()
		}
		if e.Code == 0 {
			e.Code = resp.StatusCode
		}
	case cause != nil:
		if e.Message == "" {
			e.Message = cause.Error()
		}
		if e.Code == 0 {
			e.Code = codeOf(cause)
		}
	default:
		e.Code = 0
	}

	if e.Message == "" {
		e.Message = defaultErrorMessage
	}
	return e
}

func errorFromReason(req *Request, reason string, cause error) *Error {
	return newError(req, nil, reason, 0, cause)
}

func errorFromResponse(req *Request, resp *Response) *Error {
	var (
		message string
		code    int
	)
	if detail := resp.Envelope().Error; detail != nil {
		message, code = detail.Message, detail.Code
	}
	return newError(req, resp, message, code, nil)
}

func (e *Error) Error() string {
	switch {
	case e.Response != nil:
		return fmt.Sprintf("personio: %s (code %d, status %d)", e.Message, e.Code, e.Response.StatusCode)
	case e.Code != 0:
		return fmt.Sprintf("personio: %s (code %d)", e.Message, e.Code)
	default:
		return "personio: " + e.Message
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// HasResponse reports whether the server answered. False means the request
// never reached Personio.
func (e *Error) HasResponse() bool { return e.Response != nil }

func codeOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
