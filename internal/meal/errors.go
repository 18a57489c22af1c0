package meal

import "errors"

// Error kinds surfaced by store transitions. Handlers map these to HTTP
// status codes; everything else is treated as internal.
var (
	// ErrValidation indicates malformed or out-of-domain input.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a state precondition failed at apply time.
	ErrConflict = errors.New("state conflict")
	// ErrInsufficientBalance indicates a purchase exceeding the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrNoActiveDiningMonth indicates no dining period is currently open.
	ErrNoActiveDiningMonth = errors.New("no active dining month")
)
