package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not_found")

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
