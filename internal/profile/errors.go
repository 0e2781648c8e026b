package profile

import (
	"errors"

	"github.com/ifti136/android-demo/internal/models"
)

// Validation errors. These are permanent: retrying the same request fails again.
var (
	ErrInvalidIndex        = errors.New("invalid quick action index")
	ErrProfileExists       = errors.New("profile already exists")
	ErrInvalidProfileName  = errors.New("invalid profile name")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAmount       = errors.New("amount must be non-zero")
	ErrInvalidDate         = errors.New("invalid transaction date")
	ErrMissingSource       = errors.New("transaction source is required")
	ErrInvalidQuickAction  = errors.New("quick action needs a label and a non-negative value")
	ErrEmptyImport         = errors.New("import has no valid transactions")
	ErrAccountNotFound     = errors.New("user account does not exist")
)

var permanent = []error{
	ErrInvalidIndex,
	ErrProfileExists,
	ErrInvalidProfileName,
	ErrTransactionNotFound,
	ErrInvalidAmount,
	ErrInvalidDate,
	ErrMissingSource,
	ErrInvalidQuickAction,
	ErrEmptyImport,
	ErrAccountNotFound,
	models.ErrNotFound,
}

// IsTransient reports whether err may succeed on retry: store and transport
// failures and concurrent-update conflicts are transient, validation errors
// are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	for _, p := range permanent {
		if errors.Is(err, p) {
			return false
		}
	}
	return true
}
