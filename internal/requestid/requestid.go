// Package requestid carries a per-request correlation id through the
// console and on to the backend.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header the id travels in, both inbound and outbound.
const Header = "X-Request-ID"

type ctxKey struct{}

// New returns a fresh random id.
func New() string {
	return uuid.NewString()
}

// With returns a copy of ctx carrying id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the id stored in ctx, or "" if there is none.
func From(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Valid reports whether an inbound id can be reused as is. Anything that is
// not a UUID is replaced so clients cannot inject arbitrary log values.
func Valid(id string) bool {
	return uuid.Validate(id) == nil
}
