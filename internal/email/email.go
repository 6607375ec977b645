// Package email delivers one-time login codes. Two transports exist: the
// hosted transactional service used in production and plain SMTP for
// self-hosted deployments. Which one runs is a deployment decision made
// in main from environment config.
package email

import "context"

// Sender delivers a login code to an address. Implementations must be
// safe for concurrent use; the auth service calls Send from a goroutine
// so delivery latency never blocks the login response.
type Sender interface {
	SendOTP(ctx context.Context, to, code string) error
}

// Noop discards mail. Used in tests and when no transport is configured,
// where the code still lands in the store and can be read by an admin.
type Noop struct{}

func (Noop) SendOTP(context.Context, string, string) error { return nil }
