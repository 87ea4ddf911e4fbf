// internal/domain/checkout/state.go
package checkout

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// State is the position of one checkout attempt in the placement protocol
type State string

const (
	StateValidating     State = "validating"
	StateCreatingHeader State = "creating_header"
	StateCreatingLines  State = "creating_lines"
	StateCommitted      State = "committed"
	StateRejected       State = "rejected"
	StateFailedHeader   State = "failed_header"
	StateFailedLines    State = "failed_lines"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyCart        = errors.New("cart is empty")

	// ErrOrderFailed is the single failure callers see for any store write error.
	ErrOrderFailed       = errors.New("order could not be created, please try again")
	ErrHeaderWriteFailed = fmt.Errorf("order header write failed: %w", ErrOrderFailed)
	ErrLineWriteFailed   = fmt.Errorf("order lines write failed: %w", ErrOrderFailed)
)

// Result describes a committed order
type Result struct {
	OrderID     string          `json:"order_id"`
	PaymentRef  string          `json:"payment_ref"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	State       State           `json:"state"`
}

// PlacementError is returned by PlaceOrder for every non-committed attempt.
// OrderID is only set in StateFailedLines, where it names the header that
// was written without lines.
type PlacementError struct {
	State   State
	OrderID string
	Err     error
	Cause   error
}

func (e *PlacementError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("checkout %s: %v: %v", e.State, e.Err, e.Cause)
	}
	return fmt.Sprintf("checkout %s: %v", e.State, e.Err)
}

func (e *PlacementError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}
