package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	appErrors "github.com/noah-isme/pricelist-review-api/pkg/errors"
	"github.com/noah-isme/pricelist-review-api/pkg/gateway"
)

// Remote is the subset of the gateway client the repositories use.
type Remote interface {
	Get(ctx context.Context, path string, query url.Values, out interface{}) error
	Post(ctx context.Context, path string, query url.Values, body, out interface{}) error
	Put(ctx context.Context, path string, query url.Values, body, out interface{}) error
	Patch(ctx context.Context, path string, query url.Values, body, out interface{}) error
	Upload(ctx context.Context, path, field, filename string, file io.Reader, out interface{}) error
	Download(ctx context.Context, path string, query url.Values) (*gateway.Blob, error)
}

var _ Remote = (*gateway.Client)(nil)

// upstreamError maps a gateway failure onto the service error taxonomy,
// keeping the server's own message.
func upstreamError(err error) error {
	if err == nil {
		return nil
	}
	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}

	var base *appErrors.Error
	switch {
	case gwErr.Network():
		base = appErrors.ErrUpstreamUnavailable
	case gwErr.Status == http.StatusNotFound:
		base = appErrors.ErrNotFound
	case gwErr.Status == http.StatusUnauthorized:
		base = appErrors.ErrUnauthorized
	case gwErr.Status == http.StatusForbidden:
		base = appErrors.ErrForbidden
	case gwErr.Status == http.StatusConflict:
		base = appErrors.ErrConflict
	case gwErr.Status == http.StatusBadRequest || gwErr.Status == http.StatusUnprocessableEntity:
		base = appErrors.ErrValidation
	default:
		base = appErrors.ErrUpstream
	}
	return appErrors.Wrap(gwErr, base.Code, base.Status, gwErr.Message)
}

// listKeys are the envelope keys the backend has used for collections.
var listKeys = []string{"items", "data", "results", "jobs", "clients", "products", "users"}

// decodeList accepts either a bare JSON array or an object wrapping one
// under a known key.
func decodeList(raw json.RawMessage, out interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return fmt.Errorf("decode list: %w", err)
	}
	for _, key := range listKeys {
		if inner, ok := envelope[key]; ok {
			return decodeList(inner, out)
		}
	}
	return fmt.Errorf("decode list: no collection in response")
}

func decodeFailure(err error) error {
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
}
