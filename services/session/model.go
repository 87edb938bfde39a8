package session

import (
	"context"
	"time"
)

// User is the session record: its presence in the durable scope is the only authentication signal.
type User struct {
	UID         string
	Name        string
	Email       string
	Picture     string
	AccessToken string
	CreatedAt   time.Time
}

// Scope identifies the two storage scopes of one browser tab.
type Scope struct {
	// BrowserUID is origin-scoped and survives reloads
	BrowserUID string
	// TabUID lives as long as the browser session
	TabUID string
}

// AuthContext is created on login or restore and destroyed on sign-out.
// Consumers receive it explicitly.
type AuthContext struct {
	Scope Scope
	User  User
}

//go:generate mockgen -source=model.go -package session -destination authenticator_mock.go Authenticator
type Authenticator interface {
	Authenticate(c context.Context, scope Scope) (AuthContext, bool, error)
}

// StoredValue is the persisted form of every key: a JSON document.
type StoredValue struct {
	Payload string `datastore:",noindex"`
}
