package mystore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/datastore"

	"github.com/MarcGrol/agentstudio/lib/mylog"
)

const (
	maxTransactionAttempts = 3
	maxListSize            = 100
)

type gcloudStore[T any] struct {
	client *datastore.Client
	kind   string
	logger mylog.Logger
}

func newGcloudStore[T any](c context.Context) (*gcloudStore[T], func(), error) {
	client, err := datastore.NewClient(c, os.Getenv("GOOGLE_CLOUD_PROJECT"))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating datastore client: %s", err)
	}

	return &gcloudStore[T]{
			client: client,
			kind:   kindOf[T](),
			logger: mylog.New("store"),
		}, func() {
			client.Close()
		}, nil
}

// kindOf derives the datastore kind from the unqualified type name: session.StoredValue becomes StoredValue.
func kindOf[T any]() string {
	kind := fmt.Sprintf("%T", *new(T))
	if idx := strings.LastIndex(kind, "."); idx >= 0 {
		kind = kind[idx+1:]
	}
	return kind
}

func (s *gcloudStore[T]) key(uid string) *datastore.Key {
	return datastore.NameKey(s.kind, uid, nil)
}

func transactionFrom(c context.Context) (*datastore.Transaction, bool) {
	tx, ok := c.Value(ctxTransactionKey{}).(*datastore.Transaction)
	return tx, ok
}

// RunInTransaction retries on contention, so f must be idempotent.
func (s *gcloudStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxTransactionAttempts; attempt++ {
		err = s.runInTransaction(c, f)
		if err == nil || !errors.Is(err, datastore.ErrConcurrentTransaction) {
			return err
		}
		s.logger.Log(c, s.kind, mylog.SeverityWarn, "Concurrent transaction on %s (attempt %d of %d): %s", s.kind, attempt, maxTransactionAttempts, err)
	}
	return err
}

func (s *gcloudStore[T]) runInTransaction(c context.Context, f func(c context.Context) error) error {
	tx, err := s.client.NewTransaction(c)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = f(context.WithValue(c, ctxTransactionKey{}, tx))
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			s.logger.Log(c, s.kind, mylog.SeverityError, "Error rolling back transaction on %s: %s", s.kind, rollbackErr)
		}
		return err
	}

	_, err = tx.Commit()
	if err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

func (s *gcloudStore[T]) Put(c context.Context, uid string, value T) error {
	var err error
	if tx, ok := transactionFrom(c); ok {
		_, err = tx.Put(s.key(uid), &value)
	} else {
		_, err = s.client.Put(c, s.key(uid), &value)
	}
	if err != nil {
		return fmt.Errorf("error storing %s %s: %s", s.kind, uid, err)
	}
	return nil
}

func (s *gcloudStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var value T

	var err error
	if tx, ok := transactionFrom(c); ok {
		err = tx.Get(s.key(uid), &value)
	} else {
		err = s.client.Get(c, s.key(uid), &value)
	}
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("error fetching %s %s: %s", s.kind, uid, err)
	}

	return value, true, nil
}

func (s *gcloudStore[T]) Remove(c context.Context, uid string) error {
	var err error
	if tx, ok := transactionFrom(c); ok {
		err = tx.Delete(s.key(uid))
	} else {
		err = s.client.Delete(c, s.key(uid))
	}
	if err != nil {
		return fmt.Errorf("error deleting %s %s: %s", s.kind, uid, err)
	}
	return nil
}

func (s *gcloudStore[T]) List(c context.Context) ([]T, error) {
	return s.getAll(c, datastore.NewQuery(s.kind).Limit(maxListSize))
}

func (s *gcloudStore[T]) getAll(c context.Context, q *datastore.Query) ([]T, error) {
	if tx, ok := transactionFrom(c); ok {
		q = q.Transaction(tx)
	}

	values := []T{}
	_, err := s.client.GetAll(c, q, &values)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %s", s.kind, err)
	}
	return values, nil
}
