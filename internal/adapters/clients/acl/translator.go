package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotebot/internal/adapters/clients"
	"github.com/jsamuelsen/quotebot/internal/domain"
)

// BaseAdapter holds the client and the name used in domain errors.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a base adapter for the named service.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{
		client:      client,
		serviceName: serviceName,
	}
}

// Client returns the underlying HTTP client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// ServiceName returns the name of the external service.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get calls a Bot API method without parameters.
// The caller must close the returned body.
func (a *BaseAdapter) Get(ctx context.Context, method string, opts ...clients.RequestOption) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, "/"+method, opts...)

	return a.checkResponse(resp, err, method)
}

// Post calls a Bot API method with a JSON payload.
// The caller must close the returned body.
func (a *BaseAdapter) Post(ctx context.Context, method string, payload any, opts ...clients.RequestOption) (io.ReadCloser, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", method, err)
	}

	resp, err := a.client.Post(ctx, "/"+method, bytes.NewReader(body), opts...)

	return a.checkResponse(resp, err, method)
}

func (a *BaseAdapter) checkResponse(resp *http.Response, err error, method string) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, method)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.serviceName, method)
	}

	return resp.Body, nil
}

// envelope is the success shape every Bot API method answers with.
type envelope[T any] struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
	Result      T      `json:"result"`
}

// Call posts payload to method and decodes the envelope's result.
// An envelope with ok=false is mapped like an HTTP failure even when the
// status line was 200.
func Call[T any](ctx context.Context, a *BaseAdapter, method string, payload any, opts ...clients.RequestOption) (T, error) {
	var zero T

	var (
		body io.ReadCloser
		err  error
	)

	if payload == nil {
		body, err = a.Get(ctx, method, opts...)
	} else {
		body, err = a.Post(ctx, method, payload, opts...)
	}

	if err != nil {
		return zero, err
	}

	env, err := DecodeResponse[envelope[T]](body)
	if err != nil {
		return zero, domain.NewUnavailableError(a.serviceName, fmt.Sprintf("%s: %v", method, err))
	}

	if !env.OK {
		return zero, MapAPIError(env.ErrorCode, &ErrorResponse{
			ErrorCode:   env.ErrorCode,
			Description: env.Description,
		}, a.serviceName, method)
	}

	return env.Result, nil
}

// DecodeResponse decodes a JSON body into T and closes it.
func DecodeResponse[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, fmt.Errorf("response body is nil")
	}
	defer func() { _ = body.Close() }()

	var result T
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// ValidatePositive returns a validation error unless value > 0.
func ValidatePositive[T ~int | ~int64](value T, fieldName string) error {
	if value <= 0 {
		return domain.NewValidationError(fieldName, "must be positive")
	}

	return nil
}

// Translator converts one external DTO into a domain value.
type Translator[External any, Domain any] func(ext *External) (Domain, error)

// TranslateSlice applies translate to every item and stops at the first error.
func TranslateSlice[E any, D any](items []E, translate Translator[E, D]) ([]D, error) {
	result := make([]D, 0, len(items))

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		result = append(result, translated)
	}

	return result, nil
}
