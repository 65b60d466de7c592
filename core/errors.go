package core

import "errors"

var (
	// ErrFieldNotFound is returned by lookups of identities absent from a
	// registry and its entire fallback chain. Wrapping errors carry the
	// identity in their message.
	ErrFieldNotFound = errors.New("field not found")

	// ErrMalformedName signals a field key that is not a usable identity
	// (empty name, or an unqualified key where a qualified one is required).
	// These indicate plugin bugs and fail fast at registration time.
	ErrMalformedName = errors.New("malformed field name")

	// ErrConflictingOptions signals mutually exclusive registration options,
	// e.g. the deprecated particle-type flag disagreeing with the sampling
	// kind.
	ErrConflictingOptions = errors.New("conflicting field options")

	// ErrCircularDependency is raised by dependency discovery when a field's
	// compute chain revisits a field already being resolved.
	ErrCircularDependency = errors.New("circular field dependency")

	// ErrDuplicatePlugin guards the plugin namespace.
	ErrDuplicatePlugin = errors.New("plugin already registered")
)
