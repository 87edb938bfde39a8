package providers

import (
	"fmt"
	"net/url"

	"golang.org/x/oauth2/linkedin"
)

const (
	LinkedIn = "linkedin"
)

type EndPoint struct {
	Hostname string
	Path     string
}

func (ep EndPoint) GetFullURL() string {
	return ep.Hostname + ep.Path
}

type OauthParty struct {
	Name          string
	DisplayName   string
	ClientID      string
	AuthEndpoint  EndPoint
	DefaultScopes string
}

type OAuthProvider interface {
	Set(providerName string, clientID string, authHostname string)
	Get(providerName string) (OauthParty, error)
}

type OAuthProviders struct {
	providers map[string]OauthParty
}

func NewProviders() *OAuthProviders {
	return &OAuthProviders{
		providers: map[string]OauthParty{
			LinkedIn: {
				Name:          LinkedIn,
				DisplayName:   "LinkedIn",
				ClientID:      "linkedin_client_id",
				AuthEndpoint:  endpointFromURL(linkedin.Endpoint.AuthURL),
				DefaultScopes: "openid profile email",
			},
		},
	}
}

func endpointFromURL(fullURL string) EndPoint {
	u, err := url.Parse(fullURL)
	if err != nil {
		return EndPoint{Hostname: fullURL}
	}
	return EndPoint{
		Hostname: u.Scheme + "://" + u.Host,
		Path:     u.Path,
	}
}

func (op *OAuthProviders) Set(providerName string, clientID string, authHostname string) {
	provider, found := op.providers[providerName]
	if !found {
		provider = OauthParty{Name: providerName, DisplayName: providerName}
	}

	if clientID != "" {
		provider.ClientID = clientID
	}

	if authHostname != "" {
		provider.AuthEndpoint.Hostname = authHostname
	}

	op.providers[providerName] = provider
}

func (op *OAuthProviders) Get(providerName string) (OauthParty, error) {
	provider, found := op.providers[providerName]
	if !found {
		return OauthParty{}, fmt.Errorf("oauth provider with name '%s' not found", providerName)
	}
	return provider, nil
}
