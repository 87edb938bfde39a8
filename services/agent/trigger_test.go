package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/agentstudio/lib/myhttpclient"
	"github.com/MarcGrol/agentstudio/lib/mypublisher"
	"github.com/MarcGrol/agentstudio/lib/myuuid"
	"github.com/MarcGrol/agentstudio/services/agent/agentevents"
)

func TestTrigger(t *testing.T) {
	ctx := context.TODO()

	t.Run("Start succeeds with backend message", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/agent/start", r.URL.Path)

			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			req := startRequest{}
			err = json.Unmarshal(body, &req)
			assert.NoError(t, err)
			assert.Equal(t, "AI Content", req.Niche)

			w.Write([]byte(`{"status":"success","message":"Workflow completed"}`))
		}))
		defer server.Close()

		uuider := myuuid.NewMockUUIDer(ctrl)
		uuider.EXPECT().Create().Return("attempt1")
		publisher := mypublisher.NewMockPublisher(ctrl)
		publisher.EXPECT().Publish(gomock.Any(), agentevents.TopicName, agentevents.AgentStartCompleted{
			BrowserUID: "browser1",
			AttemptUID: "attempt1",
			Niche:      "AI Content",
			Status:     "completed",
			Message:    "Workflow completed",
		}).Return(nil)

		result := NewTrigger("browser1", server.URL, myhttpclient.NewJSONHTTPClient(), uuider, publisher).Start(ctx, "AI Content")

		assert.Equal(t, Result{Status: StatusCompleted, Message: "Workflow completed"}, result)
	})

	t.Run("Start succeeds with default message", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		publisher := mypublisher.NewMockPublisher(ctrl)
		publisher.EXPECT().Publish(gomock.Any(), agentevents.TopicName, gomock.Any()).Return(nil)

		result := NewTrigger("browser1", server.URL, myhttpclient.NewJSONHTTPClient(), myuuid.RealUUIDer{}, publisher).Start(ctx, "AI Content")

		assert.Equal(t, Result{Status: StatusCompleted, Message: "Agent started successfully!"}, result)
	})

	t.Run("Backend failure message is surfaced", func(t *testing.T) {
		testCases := []struct {
			name     string
			status   int
			body     string
			expected string
		}{
			{"message", 500, `{"message":"quota exceeded"}`, "quota exceeded"},
			{"detail", 500, `{"detail":"Workflow execution failed: boom"}`, "Workflow execution failed: boom"},
			{"error", 400, `{"error":"bad niche"}`, "bad niche"},
			{"message wins", 500, `{"error":"x","detail":"y","message":"z"}`, "z"},
			{"no body", 503, ``, "agent start failed with http status 503"},
			{"structured detail", 422, `{"detail":[{"msg":"field required"}]}`, "agent start failed with http status 422"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
					w.Write([]byte(tc.body))
				}))
				defer server.Close()

				publisher := mypublisher.NewMockPublisher(ctrl)
				publisher.EXPECT().Publish(gomock.Any(), agentevents.TopicName, gomock.Any()).Return(nil)

				result := NewTrigger("browser1", server.URL, myhttpclient.NewJSONHTTPClient(), myuuid.RealUUIDer{}, publisher).Start(ctx, "AI Content")

				assert.Equal(t, StatusFailed, result.Status)
				assert.Equal(t, tc.expected, result.Message)
				assert.True(t, result.Failed())
			})
		}
	})

	t.Run("Transport error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		backendURL := server.URL
		server.Close()

		publisher := mypublisher.NewMockPublisher(ctrl)
		publisher.EXPECT().Publish(gomock.Any(), agentevents.TopicName, gomock.Any()).Return(nil)

		result := NewTrigger("browser1", backendURL, myhttpclient.NewJSONHTTPClient(), myuuid.RealUUIDer{}, publisher).Start(ctx, "AI Content")

		assert.Equal(t, StatusFailed, result.Status)
		assert.Contains(t, result.Message, "error sending POST")
	})

	t.Run("Empty niche does not call backend", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		sender := myhttpclient.NewMockHTTPSender(ctrl)
		publisher := mypublisher.NewMockPublisher(ctrl)

		result := NewTrigger("browser1", "http://localhost:8000", sender, myuuid.NewMockUUIDer(ctrl), publisher).Start(ctx, " ")

		assert.Equal(t, StatusFailed, result.Status)
	})

	t.Run("Concurrent start is refused", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		entered := make(chan struct{})
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(entered)
			<-release
			w.Write([]byte(`{"message":"Workflow completed"}`))
		}))
		defer server.Close()

		publisher := mypublisher.NewMockPublisher(ctrl)
		publisher.EXPECT().Publish(gomock.Any(), agentevents.TopicName, gomock.Any()).Return(nil)

		sut := NewTrigger("browser1", server.URL, myhttpclient.NewJSONHTTPClient(), myuuid.RealUUIDer{}, publisher)
		assert.False(t, sut.InProgress())

		done := make(chan Result)
		go func() {
			done <- sut.Start(ctx, "AI Content")
		}()

		select {
		case <-entered:
		case <-time.After(2 * time.Second):
			t.Fatal("backend not called")
		}
		assert.True(t, sut.InProgress())

		second := sut.Start(ctx, "AI Content")
		assert.Equal(t, Result{Status: StatusFailed, Message: "agent start already in progress"}, second)

		close(release)
		first := <-done
		assert.Equal(t, StatusCompleted, first.Status)
		assert.False(t, sut.InProgress())
	})
}

func TestRegistry(t *testing.T) {
	ctx := context.TODO()

	t.Run("Each attempt gets its own identity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		uuider := myuuid.NewMockUUIDer(ctrl)
		publisher := mypublisher.NewMockPublisher(ctrl)
		gomock.InOrder(
			uuider.EXPECT().Create().Return("attempt1"),
			publisher.EXPECT().Publish(gomock.Any(), agentevents.TopicName, agentevents.AgentStartCompleted{
				BrowserUID: "browser1", AttemptUID: "attempt1", Niche: "AI Content", Status: "completed", Message: "Agent started successfully!",
			}).Return(nil),
			uuider.EXPECT().Create().Return("attempt2"),
			publisher.EXPECT().Publish(gomock.Any(), agentevents.TopicName, agentevents.AgentStartCompleted{
				BrowserUID: "browser1", AttemptUID: "attempt2", Niche: "AI Content", Status: "completed", Message: "Agent started successfully!",
			}).Return(nil),
		)

		sut := NewRegistry(server.URL, myhttpclient.NewJSONHTTPClient(), uuider, publisher)

		assert.Equal(t, StatusCompleted, sut.Start(ctx, "browser1", "AI Content").Status)
		assert.Equal(t, StatusCompleted, sut.Start(ctx, "browser1", "AI Content").Status)
	})

	t.Run("Idle browsers are not retained", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		publisher := mypublisher.NewMockPublisher(ctrl)
		publisher.EXPECT().Publish(gomock.Any(), agentevents.TopicName, gomock.Any()).Return(nil).Times(2)

		sut := NewRegistry(server.URL, myhttpclient.NewJSONHTTPClient(), myuuid.RealUUIDer{}, publisher)
		sut.Start(ctx, "browser1", "AI Content")
		sut.Start(ctx, "browser2", "AI Content")

		assert.Equal(t, 0, sut.Size())
		assert.False(t, sut.InProgress("browser1"))
	})

	t.Run("Concurrent start of same browser is refused", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		entered := make(chan struct{})
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(entered)
			<-release
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		publisher := mypublisher.NewMockPublisher(ctrl)
		publisher.EXPECT().Publish(gomock.Any(), agentevents.TopicName, gomock.Any()).Return(nil)

		sut := NewRegistry(server.URL, myhttpclient.NewJSONHTTPClient(), myuuid.RealUUIDer{}, publisher)

		done := make(chan Result)
		go func() {
			done <- sut.Start(ctx, "browser1", "AI Content")
		}()

		select {
		case <-entered:
		case <-time.After(2 * time.Second):
			t.Fatal("backend not called")
		}
		assert.True(t, sut.InProgress("browser1"))
		assert.False(t, sut.InProgress("browser2"))
		assert.Equal(t, 1, sut.Size())

		second := sut.Start(ctx, "browser1", "AI Content")
		assert.Equal(t, Result{Status: StatusFailed, Message: "agent start already in progress"}, second)

		close(release)
		assert.Equal(t, StatusCompleted, (<-done).Status)
		assert.Equal(t, 0, sut.Size())
	})
}
