// internal/domain/cart/identity.go
package cart

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Akshat090803/ecommerce-final-project/internal/domain/identity"
)

// BindIdentity clears store whenever the provider reports a sign out.
// The returned function detaches the listener.
func BindIdentity(ctx context.Context, store *Store, provider identity.Provider, logger logrus.FieldLogger) func() {
	return provider.OnAuthChange(func(e identity.Event) {
		if e.Kind != identity.SignedOut {
			return
		}
		if err := store.ClearCart(ctx); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"session_id": store.SessionID(),
				"owner_id":   e.Principal.ID,
			}).Warn("Failed to clear cart on sign out")
		}
	})
}
