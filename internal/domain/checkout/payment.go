// internal/domain/checkout/payment.go
package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentRefGenerator produces the placeholder payment reference stored on an order
type PaymentRefGenerator func() string

// FabricatePaymentRef returns payment_<unix-millis>_<random hex>.
// No payment is captured; the reference only has to be unique per order.
func FabricatePaymentRef() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("payment_%d_%s", time.Now().UnixMilli(), random)
}
