package personio

import (
	"fmt"
	"net/http"

	"github.com/Checker-Finance/personio-adapter/pkg/utils"
)

// classify turns the outcome of a send into the response or exactly one
// error. Checks run in order: transport failure, HTTP status, envelope.
func classify(req *Request, resp *Response, sendErr error) (*Response, error) {
	if err := classifyTransport(req, resp, sendErr); err != nil {
		return nil, err
	}
	if err := classifyStatus(req, resp); err != nil {
		return nil, err
	}
	if err := classifyEnvelope(req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func classifyTransport(req *Request, resp *Response, sendErr error) *Error {
	if sendErr != nil {
		reason := fmt.Sprintf("unable to send %s request to %s: %v", req.Method, utils.RedactQuery(req.URL), sendErr)
		return errorFromReason(req, reason, sendErr)
	}
	if resp == nil {
		return errorFromReason(req, fmt.Sprintf("no response to %s request to %s", req.Method, utils.RedactQuery(req.URL)), nil)
	}
	return nil
}

func classifyStatus(req *Request, resp *Response) *Error {
	if resp.StatusCode >= http.StatusBadRequest {
		return errorFromResponse(req, resp)
	}
	return nil
}

// classifyEnvelope rejects responses whose envelope lacks success=true. HEAD
// responses and 204s have no body to carry an envelope and pass as-is.
func classifyEnvelope(req *Request, resp *Response) *Error {
	if len(resp.Body) == 0 && (req.Method == http.MethodHead || resp.StatusCode == http.StatusNoContent) {
		return nil
	}
	if !resp.Envelope().Success {
		return errorFromResponse(req, resp)
	}
	return nil
}
