package sqlxrepos

import (
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	pqUniqueViolation = "23505"
)

// Repositories share one connection pool.
type repo struct {
	db *sqlx.DB
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isNoRows(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

func toJSON(v interface{}) (types.JSONText, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSONText(b), nil
}
