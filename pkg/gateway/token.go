package gateway

import (
	"context"
	"errors"
)

// ErrNoToken is returned by a TokenSource that has no credential to offer.
var ErrNoToken = errors.New("no bearer token available")

// TokenSource supplies the bearer token for one outgoing request. It is
// consulted on every call; the gateway never stores the result.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken always returns the same token. Used by the CLI.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

type tokenKey struct{}

// WithToken attaches the caller's token to ctx for ContextToken.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// ContextToken reads the token placed on the request context by WithToken.
var ContextToken TokenSource = TokenFunc(func(ctx context.Context) (string, error) {
	if token, ok := ctx.Value(tokenKey{}).(string); ok && token != "" {
		return token, nil
	}
	return "", ErrNoToken
})
