// Package mocks provides testify mocks for the snapshot store contract.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of snapshot.Store.
type Store struct {
	mock.Mock
}

func (m *Store) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *Store) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}
