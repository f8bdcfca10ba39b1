package utils

import (
	"context"
	"errors"

	"github.com/kaimonolist/linkd/internal/apperr"

	"github.com/cenkalti/backoff/v5"
	"gorm.io/gorm"
)

// CreateUnique runs the generate/insert pair until insert succeeds, a key
// collision occurring at most maxTries times. The keyspaces involved make
// collisions astronomically rare; the bound only guarantees termination.
// Errors other than a duplicate key abort immediately.
func CreateUnique(ctx context.Context, maxTries uint, generate func() (string, error), insert func(key string) error) (string, error) {
	operation := func() (string, error) {
		key, err := generate()

		if err != nil {
			return "", backoff.Permanent(err)
		}

		if err := insert(key); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return "", err
			}
			return "", backoff.Permanent(err)
		}

		return key, nil
	}

	key, err := backoff.Retry(ctx, operation, backoff.WithBackOff(&backoff.ZeroBackOff{}), backoff.WithMaxTries(maxTries))

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", apperr.Wrap(apperr.ResourceExhausted, "could not allocate a unique key", err)
		}
		return "", err
	}

	return key, nil
}
