package exchange

import "errors"

var (
	// ErrAuthDenied 401/403 class failures: bad keys or missing permissions.
	ErrAuthDenied = errors.New("exchange: authorization denied")

	// ErrOrderRejected the venue refused the order itself
	// (insufficient balance at the venue, minimum notional not met, ...).
	ErrOrderRejected = errors.New("exchange: order rejected")

	// ErrTransport network or timeout failure before a usable response.
	ErrTransport = errors.New("exchange: transport failure")

	// ErrUnavailable generic degraded response (undecodable body, 5xx, ...).
	ErrUnavailable = errors.New("exchange: unavailable")
)
