package jobsummary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/agentstudio/lib/myhttpclient"
	"github.com/MarcGrol/agentstudio/lib/mytime"
)

func TestClient(t *testing.T) {
	ctx := context.TODO()

	t.Run("Counts are expanded into entries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/agent/summary", r.URL.Path)
			w.Write([]byte(`{"total_completed":3,"total_failed":1}`))
		}))
		defer server.Close()

		nower := mytime.NewMockNower(ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		entries, err := NewClient(server.URL, myhttpclient.NewJSONHTTPClient(), nower).Fetch(ctx, "abc")
		assert.NoError(t, err)
		assert.Len(t, entries, 4)

		counts := CountEntries(entries)
		assert.Equal(t, Counts{Completed: 3, Failed: 1, Total: 4}, counts)

		for _, e := range entries {
			assert.Equal(t, "abc", e.UserID)
			assert.True(t, e.UserLogged)
			assert.Equal(t, mytime.ExampleTime, e.CreatedAt)
			assert.Equal(t, mytime.ExampleTime, e.UpdatedAt)
		}
		assert.Equal(t, "completed-1", entries[0].ID)
		assert.Equal(t, "completed-3", entries[2].ID)
		assert.Equal(t, "failed-1", entries[3].ID)
		assert.Equal(t, StatusFailed, entries[3].Status)
	})

	t.Run("No user means no request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		entries, err := NewClient("http://localhost:8000", myhttpclient.NewMockHTTPSender(ctrl), mytime.NewMockNower(ctrl)).Fetch(ctx, "")
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Zero counts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sender := myhttpclient.NewMockHTTPSender(ctrl)
		sender.EXPECT().Send(gomock.Any(), http.MethodGet, "http://localhost:8000/agent/summary", gomock.Nil(), gomock.Nil()).
			Return(200, []byte(`{"total_completed":0,"total_failed":0}`), nil)
		nower := mytime.NewMockNower(ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		entries, err := NewClient("http://localhost:8000/", sender, nower).Fetch(ctx, "abc")
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Backend failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"Failed to fetch job summary: mongo down"}`))
		}))
		defer server.Close()

		entries, err := NewClient(server.URL, myhttpclient.NewJSONHTTPClient(), mytime.NewMockNower(ctrl)).Fetch(ctx, "abc")
		assert.EqualError(t, err, "error fetching job summary: 500")
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("Transport failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		backendURL := server.URL
		server.Close()

		entries, err := NewClient(backendURL, myhttpclient.NewJSONHTTPClient(), mytime.NewMockNower(ctrl)).Fetch(ctx, "abc")
		assert.Error(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Implausible counts are rejected", func(t *testing.T) {
		testCases := []struct {
			name     string
			body     string
			expected string
		}{
			{"huge", `{"total_completed":4611686018427387904,"total_failed":0}`, "invalid job summary: more than 1000 jobs"},
			{"sum over limit", `{"total_completed":600,"total_failed":600}`, "invalid job summary: more than 1000 jobs"},
			{"negative", `{"total_completed":-1,"total_failed":2}`, "invalid job summary: negative count"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				sender := myhttpclient.NewMockHTTPSender(ctrl)
				sender.EXPECT().Send(gomock.Any(), http.MethodGet, "http://localhost:8000/agent/summary", gomock.Nil(), gomock.Nil()).
					Return(200, []byte(tc.body), nil)

				var entries []Entry
				var err error
				assert.NotPanics(t, func() {
					entries, err = NewClient("http://localhost:8000", sender, mytime.NewMockNower(ctrl)).Fetch(ctx, "abc")
				})
				assert.EqualError(t, err, tc.expected)
				assert.NotNil(t, entries)
				assert.Empty(t, entries)
			})
		}
	})

	t.Run("Counts at the limit are expanded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sender := myhttpclient.NewMockHTTPSender(ctrl)
		sender.EXPECT().Send(gomock.Any(), http.MethodGet, "http://localhost:8000/agent/summary", gomock.Nil(), gomock.Nil()).
			Return(200, []byte(`{"total_completed":1000,"total_failed":0}`), nil)
		nower := mytime.NewMockNower(ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		entries, err := NewClient("http://localhost:8000", sender, nower).Fetch(ctx, "abc")
		assert.NoError(t, err)
		assert.Len(t, entries, MaxEntries)
	})
}
