package services

import (
	"context"
	"maps"

	"github.com/dmitrijs2005/securedrop/internal/cryptox"
	"github.com/dmitrijs2005/securedrop/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// memRepo is an in-memory records.Repository that counts calls.
type memRepo[T any] struct {
	data    map[string]T
	loads   int
	saves   int
	loadErr error
	saveErr error
}

func newMemRepo[T any]() *memRepo[T] {
	return &memRepo[T]{data: make(map[string]T)}
}

func (r *memRepo[T]) Load(ctx context.Context) (map[string]T, error) {
	r.loads++
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return maps.Clone(r.data), nil
}

func (r *memRepo[T]) Save(ctx context.Context, data map[string]T) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.data = maps.Clone(data)
	return nil
}

var testLog = logging.Discard()

func fastHasher() cryptox.Hasher {
	return cryptox.BcryptHasher{Cost: bcrypt.MinCost}
}

// passwords returns a PasswordPrompt that hands out the given passwords in
// order and records how many times it was called.
func passwords(calls *int, pws ...string) PasswordPrompt {
	return func(attempt int) ([]byte, error) {
		*calls++
		return []byte(pws[attempt]), nil
	}
}
