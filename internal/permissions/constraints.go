package permissions

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
)

// translateConstraint maps unique-violation SQLSTATEs onto the duplicate
// sentinel so handlers answer 409 instead of 500.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: permission code already exists", httpx.ErrDuplicate)
	}
	return err
}
