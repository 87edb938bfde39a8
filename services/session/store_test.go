package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/agentstudio/lib/mystore"
	"github.com/MarcGrol/agentstudio/lib/mytime"
)

var (
	tab1 = Scope{BrowserUID: "browser1", TabUID: "tab1"}
	tab2 = Scope{BrowserUID: "browser1", TabUID: "tab2"}

	exampleUser = User{
		UID:         "abc",
		Name:        "Marc Grol",
		Email:       "marc@example.com",
		Picture:     "https://example.com/marc.png",
		AccessToken: "token123",
		CreatedAt:   mytime.ExampleTime,
	}
)

func setupStore(t *testing.T) (context.Context, *store, *mystore.InMemoryStore[StoredValue]) {
	c := context.TODO()
	durable, _, err := mystore.NewInMemoryStore[StoredValue](c)
	assert.NoError(t, err)
	tab, _, err := mystore.NewInMemoryStore[StoredValue](c)
	assert.NoError(t, err)
	return c, NewStore(durable, tab), durable
}

func TestSessionStore(t *testing.T) {
	t.Run("User round trip", func(t *testing.T) {
		c, sut, _ := setupStore(t)

		_, found, err := sut.GetUser(c, tab1)
		assert.NoError(t, err)
		assert.False(t, found)

		err = sut.PutUser(c, tab1, exampleUser)
		assert.NoError(t, err)

		user, found, err := sut.GetUser(c, tab1)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, exampleUser.UID, user.UID)
		assert.Equal(t, exampleUser.AccessToken, user.AccessToken)
		assert.True(t, exampleUser.CreatedAt.Equal(user.CreatedAt))

		err = sut.RemoveUser(c, tab1)
		assert.NoError(t, err)

		_, found, err = sut.GetUser(c, tab1)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("User is shared between tabs of the same browser", func(t *testing.T) {
		c, sut, _ := setupStore(t)

		err := sut.PutUser(c, tab1, exampleUser)
		assert.NoError(t, err)

		_, found, err := sut.GetUser(c, tab2)
		assert.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("State is overwritten", func(t *testing.T) {
		c, sut, _ := setupStore(t)

		err := sut.PutState(c, tab1, "first")
		assert.NoError(t, err)
		err = sut.PutState(c, tab1, "second")
		assert.NoError(t, err)

		state, found, err := sut.GetState(c, tab1)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "second", state)

		err = sut.RemoveState(c, tab1)
		assert.NoError(t, err)
		_, found, err = sut.GetState(c, tab1)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Callback guard is tab scoped", func(t *testing.T) {
		c, sut, _ := setupStore(t)

		err := sut.MarkCallbackHandled(c, tab1)
		assert.NoError(t, err)

		handled, err := sut.IsCallbackHandled(c, tab1)
		assert.NoError(t, err)
		assert.True(t, handled)

		handled, err = sut.IsCallbackHandled(c, tab2)
		assert.NoError(t, err)
		assert.False(t, handled)

		err = sut.ClearCallbackHandled(c, tab1)
		assert.NoError(t, err)
		handled, err = sut.IsCallbackHandled(c, tab1)
		assert.NoError(t, err)
		assert.False(t, handled)
	})

	t.Run("Undecodable value counts as absent", func(t *testing.T) {
		c, sut, durable := setupStore(t)

		err := durable.Put(c, "browser1_user", StoredValue{Payload: "{not json"})
		assert.NoError(t, err)

		_, found, err := sut.GetUser(c, tab1)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Missing scope", func(t *testing.T) {
		c, sut, _ := setupStore(t)

		err := sut.PutUser(c, Scope{}, exampleUser)
		assert.Error(t, err)
	})

	t.Run("Remove absent value", func(t *testing.T) {
		c, sut, _ := setupStore(t)

		err := sut.RemoveUser(c, tab1)
		assert.NoError(t, err)
		err = sut.ClearCallbackHandled(c, tab1)
		assert.NoError(t, err)
	})
}
