package domain

import "errors"

// Error taxonomy for the visit lifecycle engine. Handlers map these to
// HTTP responses; everything except ErrPolicyBlocked surfaces to callers
// unchanged.
var (
	// ErrNotFound: the referenced property or visit does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrValidation: a required creation field is missing or malformed.
	ErrValidation = errors.New("invalid input")

	// ErrUnauthorized: the actor is neither the record's owner nor its
	// requester.
	ErrUnauthorized = errors.New("actor is not the owner or requester")

	// ErrInvalidTransition: the requested status edge is not in the
	// allowed state graph.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrPolicyBlocked: the store's access policy rejected an anonymous
	// write. Swallowed into an empty result on the self-service create
	// path and logged; never shown to the caller.
	ErrPolicyBlocked = errors.New("write rejected by store access policy")

	// ErrNoDestination: a notification builder could not resolve a phone
	// number or email address.
	ErrNoDestination = errors.New("no destination for notification")

	// ErrTransport: storage was unreachable or failed mid-call. Propagated
	// as-is; the engine never retries.
	ErrTransport = errors.New("storage transport failure")
)
