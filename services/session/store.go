package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MarcGrol/agentstudio/lib/myerrors"
	"github.com/MarcGrol/agentstudio/lib/mylog"
	"github.com/MarcGrol/agentstudio/lib/mystore"
	"github.com/MarcGrol/agentstudio/lib/myvault"
)

const (
	userKey            = "user"
	stateKey           = "state"
	callbackHandledKey = "callback_handled"
)

type Store interface {
	GetUser(c context.Context, scope Scope) (User, bool, error)
	PutUser(c context.Context, scope Scope, user User) error
	RemoveUser(c context.Context, scope Scope) error

	GetState(c context.Context, scope Scope) (string, bool, error)
	PutState(c context.Context, scope Scope, state string) error
	RemoveState(c context.Context, scope Scope) error

	IsCallbackHandled(c context.Context, scope Scope) (bool, error)
	MarkCallbackHandled(c context.Context, scope Scope) error
	ClearCallbackHandled(c context.Context, scope Scope) error
}

type store struct {
	durable myvault.VaultReadWriter[StoredValue]
	tab     mystore.Store[StoredValue]
	logger  mylog.Logger
}

// NewStore combines a durable, origin-scoped vault for the session record and state nonce
// with an ephemeral, tab-scoped store for the callback guard.
func NewStore(durable myvault.VaultReadWriter[StoredValue], tab mystore.Store[StoredValue]) *store {
	return &store{
		durable: durable,
		tab:     tab,
		logger:  mylog.New("session"),
	}
}

func (s *store) GetUser(c context.Context, scope Scope) (User, bool, error) {
	user := User{}
	found, err := s.get(c, s.durable, scope.BrowserUID, userKey, &user)
	if err != nil || !found {
		return User{}, false, err
	}
	return user, true, nil
}

func (s *store) PutUser(c context.Context, scope Scope, user User) error {
	return s.put(c, s.durable, scope.BrowserUID, userKey, user)
}

func (s *store) RemoveUser(c context.Context, scope Scope) error {
	return s.remove(c, s.durable, scope.BrowserUID, userKey)
}

func (s *store) GetState(c context.Context, scope Scope) (string, bool, error) {
	state := ""
	found, err := s.get(c, s.durable, scope.BrowserUID, stateKey, &state)
	if err != nil || !found || state == "" {
		return "", false, err
	}
	return state, true, nil
}

func (s *store) PutState(c context.Context, scope Scope, state string) error {
	return s.put(c, s.durable, scope.BrowserUID, stateKey, state)
}

func (s *store) RemoveState(c context.Context, scope Scope) error {
	return s.remove(c, s.durable, scope.BrowserUID, stateKey)
}

func (s *store) IsCallbackHandled(c context.Context, scope Scope) (bool, error) {
	handled := false
	found, err := s.get(c, s.tab, scope.TabUID, callbackHandledKey, &handled)
	if err != nil || !found {
		return false, err
	}
	return handled, nil
}

func (s *store) MarkCallbackHandled(c context.Context, scope Scope) error {
	return s.put(c, s.tab, scope.TabUID, callbackHandledKey, true)
}

func (s *store) ClearCallbackHandled(c context.Context, scope Scope) error {
	return s.remove(c, s.tab, scope.TabUID, callbackHandledKey)
}

type keyValueStore interface {
	Get(c context.Context, uid string) (StoredValue, bool, error)
	Put(c context.Context, uid string, value StoredValue) error
	Remove(c context.Context, uid string) error
}

func (s *store) get(c context.Context, kv keyValueStore, scopeUID string, key string, target any) (bool, error) {
	uid, err := composeUID(scopeUID, key)
	if err != nil {
		return false, err
	}

	value, found, err := kv.Get(c, uid)
	if err != nil {
		return false, myerrors.NewInternalError(fmt.Errorf("error fetching %s: %s", key, err))
	}
	if !found {
		return false, nil
	}

	err = json.Unmarshal([]byte(value.Payload), target)
	if err != nil {
		// An undecodable value is the same as no value
		s.logger.Log(c, scopeUID, mylog.SeverityWarn, "Ignoring undecodable %s: %s", key, err)
		return false, nil
	}

	return true, nil
}

func (s *store) put(c context.Context, kv keyValueStore, scopeUID string, key string, value any) error {
	uid, err := composeUID(scopeUID, key)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error serializing %s: %s", key, err))
	}

	err = kv.Put(c, uid, StoredValue{Payload: string(payload)})
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error storing %s: %s", key, err))
	}

	return nil
}

func (s *store) remove(c context.Context, kv keyValueStore, scopeUID string, key string) error {
	uid, err := composeUID(scopeUID, key)
	if err != nil {
		return err
	}

	err = kv.Remove(c, uid)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error removing %s: %s", key, err))
	}

	return nil
}

func composeUID(scopeUID string, key string) (string, error) {
	if scopeUID == "" {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("missing scope for key %s", key))
	}
	return scopeUID + "_" + key, nil
}
