package order

import "errors"

// Validation failure classes. Every one of these aborts the whole batch
// before any output construction begins; callers inspect them with
// errors.Is after the usual fmt.Errorf wrapping.
var (
	// ErrInvalidOrderParameters covers non-positive offer amounts or
	// prices, identical offered/asked assets and inverted time bounds,
	// all detected at order-creation time.
	ErrInvalidOrderParameters = errors.New("invalid order parameters")

	// ErrInvalidFillWindow means the current time is outside an order's
	// [start, end] window.
	ErrInvalidFillWindow = errors.New("invalid fill window")

	// ErrZeroFillAmount means a requested fill amount is absent, zero or
	// negative.
	ErrZeroFillAmount = errors.New("non-positive fill amount")

	// ErrOverFillAmount means a requested fill exceeds the order's
	// remaining offered amount.
	ErrOverFillAmount = errors.New("fill amount exceeds remaining offer")

	// ErrDuplicateFillReference means a fill batch names the same order
	// more than once. An order UTxO can only be spent once per
	// transaction, so the batch is rejected as a whole.
	ErrDuplicateFillReference = errors.New("duplicate order reference in fill batch")

	// ErrMissingDatum means a referenced order UTxO has no attached
	// datum and no resolvable datum hash.
	ErrMissingDatum = errors.New("missing datum")

	// ErrUnresolvedReference means a referenced UTxO does not exist on
	// chain anymore, or a batch named nothing to resolve.
	ErrUnresolvedReference = errors.New("unresolved reference")
)
