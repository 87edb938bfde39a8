package oauthclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/MarcGrol/agentstudio/lib/myhttpclient"
	"github.com/MarcGrol/agentstudio/services/oauth/providers"
)

type ComposeAuthURLRequest struct {
	ProviderName  string
	CompletionURL string
	Scope         string
	State         string
}

type GetTokenRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

type GetTokenResponse struct {
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope,omitempty"`
}

type GetProfileResponse struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// UserID prefers the OpenID subject over the legacy member id.
func (p GetProfileResponse) UserID() string {
	if p.Sub != "" {
		return p.Sub
	}
	return p.ID
}

//go:generate mockgen -source=oauth_client.go -package oauthclient -destination oauth_client_mock.go OauthClient
type OauthClient interface {
	ComposeAuthURL(c context.Context, req ComposeAuthURLRequest) (string, error)
	GetAccessToken(c context.Context, req GetTokenRequest) (GetTokenResponse, error)
	GetProfile(c context.Context, accessToken string) (GetProfileResponse, error)
}

type oauthClient struct {
	providers  providers.OAuthProvider
	backendURL string
	httpClient myhttpclient.HTTPSender
}

// NewOAuthClient composes authorization URLs locally; the code-for-token exchange
// and profile lookup are delegated to the backend.
func NewOAuthClient(providers providers.OAuthProvider, backendURL string, httpClient myhttpclient.HTTPSender) *oauthClient {
	return &oauthClient{
		providers:  providers,
		backendURL: strings.TrimSuffix(backendURL, "/"),
		httpClient: httpClient,
	}
}

func (oc oauthClient) ComposeAuthURL(c context.Context, req ComposeAuthURLRequest) (string, error) {
	provider, err := oc.providers.Get(req.ProviderName)
	if err != nil {
		return "", fmt.Errorf("provider with name %s not known", req.ProviderName)
	}

	scope := req.Scope
	if scope == "" {
		scope = provider.DefaultScopes
	}

	config := oauth2.Config{
		ClientID: provider.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL: provider.AuthEndpoint.GetFullURL(),
		},
		RedirectURL: req.CompletionURL,
		Scopes:      strings.Fields(scope),
	}

	/*  Example:
	https://www.linkedin.com/oauth/v2/authorization
		?client_id=86abcdefghijkl
		&redirect_uri=http%3A%2F%2Flocalhost%3A8080%2Fauth%2Fcallback
		&response_type=code
		&scope=openid+profile+email
		&state=5b1f0c2a...
	*/
	return config.AuthCodeURL(req.State), nil
}

func (oc oauthClient) GetAccessToken(c context.Context, req GetTokenRequest) (GetTokenResponse, error) {
	requestBody, err := json.Marshal(req)
	if err != nil {
		return GetTokenResponse{}, fmt.Errorf("error marshalling token request: %s", err)
	}

	httpRespCode, respBody, err := oc.httpClient.Send(c, http.MethodPost, oc.backendURL+"/auth/linkedin/token", nil, requestBody)
	if err != nil {
		return GetTokenResponse{}, fmt.Errorf("error getting token: %s", err)
	}

	if httpRespCode != http.StatusOK {
		return GetTokenResponse{}, fmt.Errorf("error getting token: %d", httpRespCode)
	}

	resp := GetTokenResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return GetTokenResponse{}, fmt.Errorf("error parsing token response: %s", err)
	}

	if resp.AccessToken == "" {
		return GetTokenResponse{}, fmt.Errorf("no access token returned")
	}

	return resp, nil
}

func (oc oauthClient) GetProfile(c context.Context, accessToken string) (GetProfileResponse, error) {
	httpRespCode, respBody, err := oc.httpClient.Send(c, http.MethodGet, oc.backendURL+"/auth/linkedin/me", myhttpclient.BearerHeader(accessToken), nil)
	if err != nil {
		return GetProfileResponse{}, fmt.Errorf("error getting profile: %s", err)
	}

	if httpRespCode != http.StatusOK {
		return GetProfileResponse{}, fmt.Errorf("error getting profile: %d", httpRespCode)
	}

	resp := GetProfileResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return GetProfileResponse{}, fmt.Errorf("error parsing profile response: %s", err)
	}

	return resp, nil
}
