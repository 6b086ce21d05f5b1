// Package request builds the wire requests sent to the cloud server.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// AuthDataKey is the payload key that carries the caller's credentials.
const AuthDataKey = "auth_data"

// ContentType is sent with every request.
const ContentType = "application/json"

// bodyIndent matches the pretty-printed format the server expects.
const bodyIndent = "    "

// ErrAuthData is returned when the auth data provider fails.
var ErrAuthData = errors.New("auth data unavailable")

// Payload is the JSON object sent as the request body.
type Payload map[string]any

// AuthDataProvider supplies the credential blob attached to every request.
type AuthDataProvider interface {
	AuthData(ctx context.Context) (any, error)
}

// AuthDataFunc adapts a function to an AuthDataProvider.
type AuthDataFunc func(ctx context.Context) (any, error)

// AuthData calls f.
func (f AuthDataFunc) AuthData(ctx context.Context) (any, error) {
	return f(ctx)
}

// WireRequest is a fully encoded request that has not been sent yet.
type WireRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// HTTPRequest materializes the wire request.
// URL errors surface here, not at build time.
func (w *WireRequest) HTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, w.Method, w.URL, bytes.NewReader(w.Body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = w.Header.Clone()
	return req, nil
}

// Builder creates wire requests with auth data injected.
type Builder struct {
	auth AuthDataProvider
}

// NewBuilder creates a builder. A nil provider injects JSON null.
func NewBuilder(auth AuthDataProvider) *Builder {
	return &Builder{auth: auth}
}

// Build inserts the auth data into payload and encodes it as a POST to url.
// The payload is mutated in place; a nil payload is treated as empty.
func (b *Builder) Build(ctx context.Context, url string, payload Payload) (*WireRequest, error) {
	if payload == nil {
		payload = Payload{}
	}

	var authData any
	if b.auth != nil {
		data, err := b.auth.AuthData(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAuthData, err)
		}
		authData = data
	}
	payload[AuthDataKey] = authData

	body, err := Encode(payload)
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	header.Set("Content-Type", ContentType)

	return &WireRequest{
		Method: http.MethodPost,
		URL:    url,
		Header: header,
		Body:   body,
	}, nil
}

// Encode renders payload with four-space indentation and no HTML escaping.
func Encode(payload Payload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", bodyIndent)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
