package blacklist

import (
	"context"

	"github.com/5w1tchy/passmeter/internal/store/dbx"
)

const listQuery = `SELECT value FROM public.common_passwords WHERE value <> '' ORDER BY value`

// List returns every row of public.common_passwords as stored.
func List(ctx context.Context, q dbx.Queryer) ([]string, error) {
	return dbx.QueryColumn[string](ctx, q, listQuery)
}
