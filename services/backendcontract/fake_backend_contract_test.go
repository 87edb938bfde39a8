package backendcontract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/agentstudio/lib/myhttpclient"
	"github.com/MarcGrol/agentstudio/lib/mypublisher"
	"github.com/MarcGrol/agentstudio/lib/mytime"
	"github.com/MarcGrol/agentstudio/lib/myuuid"
	"github.com/MarcGrol/agentstudio/services/agent"
	"github.com/MarcGrol/agentstudio/services/jobsummary"
	"github.com/MarcGrol/agentstudio/services/oauth/oauthclient"
	"github.com/MarcGrol/agentstudio/services/oauth/providers"
)

func TestFakeBackend(t *testing.T) {
	BackendContract{
		backend: func() http.Handler {
			return NewFakeBackend().Handler()
		},
	}.Test(t)
}

// BackendContract describes the behaviour the clients rely on. Run it against any backend.
type BackendContract struct {
	backend func() http.Handler
}

func (bc BackendContract) Test(t *testing.T) {
	t.Run("can exchange a code and fetch the profile", func(t *testing.T) {
		var (
			server = httptest.NewServer(bc.backend())
			ctx    = context.Background()
			sut    = oauthclient.NewOAuthClient(providers.NewProviders(), server.URL, myhttpclient.NewJSONHTTPClient())
		)
		defer server.Close()

		token, err := sut.GetAccessToken(ctx, oauthclient.GetTokenRequest{Code: "abc", RedirectURI: "http://localhost:8080/auth/callback"})
		assert.NoError(t, err)
		assert.NotEmpty(t, token.AccessToken)

		profile, err := sut.GetProfile(ctx, token.AccessToken)
		assert.NoError(t, err)
		assert.NotEmpty(t, profile.UserID())
		assert.NotEmpty(t, profile.Email)
	})

	t.Run("rejects an unknown access token", func(t *testing.T) {
		var (
			server = httptest.NewServer(bc.backend())
			ctx    = context.Background()
			sut    = oauthclient.NewOAuthClient(providers.NewProviders(), server.URL, myhttpclient.NewJSONHTTPClient())
		)
		defer server.Close()

		_, err := sut.GetProfile(ctx, "forged")
		assert.Error(t, err)
	})

	t.Run("counts started jobs in the summary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var (
			server    = httptest.NewServer(bc.backend())
			ctx       = context.Background()
			publisher = mypublisher.NewMockPublisher(ctrl)
			nower     = mytime.NewMockNower(ctrl)
			trigger   = agent.NewTrigger("browser1", server.URL, myhttpclient.NewJSONHTTPClient(), myuuid.RealUUIDer{}, publisher)
			summary   = jobsummary.NewClient(server.URL, myhttpclient.NewJSONHTTPClient(), nower)
		)
		defer server.Close()

		publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(4)
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		for _, niche := range []string{"AI Content", "Go", "Cloud"} {
			result := trigger.Start(ctx, niche)
			assert.Equal(t, agent.StatusCompleted, result.Status)
		}
		result := trigger.Start(ctx, "quota")
		assert.Equal(t, agent.Result{Status: agent.StatusFailed, Message: "quota exceeded"}, result)

		entries, err := summary.Fetch(ctx, "abc")
		assert.NoError(t, err)
		assert.Equal(t, jobsummary.Counts{Completed: 3, Failed: 1, Total: 4}, jobsummary.CountEntries(entries))
	})

	// example of strange behaviours we didn't expect
	t.Run("a token response without access token is a failure", func(t *testing.T) {
		var (
			server = httptest.NewServer(bc.backend())
			ctx    = context.Background()
			sut    = oauthclient.NewOAuthClient(providers.NewProviders(), server.URL, myhttpclient.NewJSONHTTPClient())
		)
		defer server.Close()

		_, err := sut.GetAccessToken(ctx, oauthclient.GetTokenRequest{Code: "no-token", RedirectURI: "http://localhost:8080/auth/callback"})
		assert.EqualError(t, err, "no access token returned")
	})
}
