package repository

import (
	"fmt"

	"ride-pool/internal/carpool/domain"
)

// storeError tags infrastructure-level failures with ErrStoreUnavailable so
// callers can distinguish transient store trouble from domain outcomes.
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w (%v)", op, domain.ErrStoreUnavailable, err)
}
