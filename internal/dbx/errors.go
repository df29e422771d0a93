package dbx

import (
	"fmt"

	"github.com/dmitrijs2005/msgrelay/internal/common"
)

// Unavailable wraps a driver error so that it matches
// common.ErrStoreUnavailable while keeping the original error in the chain.
func Unavailable(err error) error {
	return fmt.Errorf("db error: %w: %w", common.ErrStoreUnavailable, err)
}
