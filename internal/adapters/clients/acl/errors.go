package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotebot/internal/adapters/clients"
	"github.com/jsamuelsen/quotebot/internal/domain"
)

// ErrorResponse is the failure half of a Bot API envelope.
type ErrorResponse struct {
	OK          bool                `json:"ok"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Description string              `json:"description,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

// ResponseParameters carries hints attached to some failures.
type ResponseParameters struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

// GetMessage returns the description or a generic message for the code.
func (e *ErrorResponse) GetMessage() string {
	if e.Description != "" {
		return e.Description
	}

	return http.StatusText(e.ErrorCode)
}

// ParseErrorResponse decodes a failed envelope. It returns nil when the body
// is empty, not JSON, or reports ok=true.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.OK || (errResp.ErrorCode == 0 && errResp.Description == "") {
		return nil
	}

	return &errResp
}

// MapHTTPError translates a failed call into a domain error.
//
// clientErr takes precedence: when set, resp is ignored. Otherwise the body
// is parsed for an envelope whose error_code overrides the HTTP status.
// Successful 2xx responses map to nil.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, method string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, method)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var errResp *ErrorResponse
	if resp.Body != nil {
		errResp = ParseErrorResponse(resp.Body)
	}

	status := resp.StatusCode
	if errResp != nil && errResp.ErrorCode != 0 {
		status = errResp.ErrorCode
	}

	return MapAPIError(status, errResp, serviceName, method)
}

// MapAPIError maps a Bot API error code to a domain error. The description
// from the envelope, when present, becomes the error message.
//
//	400, other 4xx   validation   (malformed request, unparsable entities)
//	401, 403         forbidden    (bad token, bot blocked by the user)
//	404              not found    (unknown method)
//	409              conflict     (webhook set or a second poller running)
//	429, 5xx         unavailable  (flood control, Telegram outage)
func MapAPIError(code int, errResp *ErrorResponse, serviceName, method string) error {
	message := fmt.Sprintf("%s failed with status %d", method, code)
	if errResp != nil && errResp.Description != "" {
		message = errResp.Description
	}

	if code == http.StatusTooManyRequests && errResp.retryAfter() > 0 {
		message = fmt.Sprintf("rate limited, retry after %ds", errResp.retryAfter())
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.NewForbiddenError(method, message)
	case http.StatusNotFound:
		return domain.NewNotFoundError("method", method)
	case http.StatusConflict:
		return domain.NewConflictError(serviceName, message)
	case http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, message)
	}

	if code >= http.StatusInternalServerError {
		return domain.NewUnavailableError(serviceName, message)
	}

	return domain.NewValidationError(method, message)
}

func (e *ErrorResponse) retryAfter() int {
	if e == nil || e.Parameters == nil {
		return 0
	}

	return e.Parameters.RetryAfter
}

// mapClientError reports every transport-level failure as unavailable; only
// the message distinguishes a tripped breaker from exhausted retries.
func mapClientError(err error, serviceName, method string) error {
	var detail string

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		detail = "circuit breaker open during " + method
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		detail = "max retries exceeded during " + method
	default:
		detail = fmt.Sprintf("%s failed: %v", method, err)
	}

	return domain.NewUnavailableError(serviceName, detail)
}
