package logger

import "context"

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// ticketIDKey is the context key for the ticket being executed.
var ticketIDKey = contextKey{}

// WithTicketID returns a new context carrying the ticket under execution.
func WithTicketID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ticketIDKey, id)
}

// TicketID extracts the ticket ID from the context.
// Returns an empty string if none is set.
func TicketID(ctx context.Context) string {
	id, _ := ctx.Value(ticketIDKey).(string)
	return id
}
