package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected means credentials for the provider are missing or
	// revoked; the user must (re)connect in Settings.
	ErrNotConnected = errors.New("provider not connected")

	// ErrInvalidLocator means the user-supplied locator (e.g. a Figma
	// file URL) does not match the expected shape.
	ErrInvalidLocator = errors.New("invalid locator")

	// ErrUpstream means the provider or the network failed; the call is
	// safe to retry.
	ErrUpstream = errors.New("provider unavailable")
)

// upstreamError wraps a transport or provider failure so callers can
// match it with errors.Is(err, ErrUpstream).
func upstreamError(provider Provider, op string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", provider, op, ErrUpstream, err)
}

// notConnectedError builds a provider-tagged ErrNotConnected.
func notConnectedError(provider Provider) error {
	return fmt.Errorf("%s: %w", provider, ErrNotConnected)
}
