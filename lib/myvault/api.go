package myvault

import (
	"context"

	"github.com/MarcGrol/agentstudio/lib/mystore"
)

//go:generate mockgen -source=api.go -package myvault -destination vault_mock.go VaultReader VaultReadWriter
type VaultReader[T any] interface {
	Get(c context.Context, uid string) (T, bool, error)
}

// VaultReadWriter holds secrets, such as access tokens, that must survive restarts.
type VaultReadWriter[T any] interface {
	VaultReader[T]
	Put(c context.Context, uid string, value T) error
	Remove(c context.Context, uid string) error
}

func New[T any](c context.Context) (VaultReadWriter[T], func(), error) {
	return mystore.New[T](c)
}
