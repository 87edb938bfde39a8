package oauth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/MarcGrol/agentstudio/lib/myerrors"
	"github.com/MarcGrol/agentstudio/lib/myevents"
	"github.com/MarcGrol/agentstudio/lib/mylog"
	"github.com/MarcGrol/agentstudio/lib/mynonce"
	"github.com/MarcGrol/agentstudio/lib/mypublisher"
	"github.com/MarcGrol/agentstudio/lib/mytime"
	"github.com/MarcGrol/agentstudio/lib/myuuid"
	"github.com/MarcGrol/agentstudio/services/oauth/oauthclient"
	"github.com/MarcGrol/agentstudio/services/oauth/oauthevents"
	"github.com/MarcGrol/agentstudio/services/oauth/providers"
	"github.com/MarcGrol/agentstudio/services/session"
)

type service struct {
	sessionStore session.Store
	nower        mytime.Nower
	noncer       mynonce.Noncer
	uuider       myuuid.UUIDer
	logger       mylog.Logger
	oauthClient  oauthclient.OauthClient
	publisher    mypublisher.Publisher
	providers    providers.OAuthProvider
	redirectURI  string
}

func newService(sessionStore session.Store, nower mytime.Nower, noncer mynonce.Noncer, uuider myuuid.UUIDer, oauthClient oauthclient.OauthClient, pub mypublisher.Publisher, providers providers.OAuthProvider, redirectURI string) *service {
	return &service{
		sessionStore: sessionStore,
		nower:        nower,
		noncer:       noncer,
		uuider:       uuider,
		oauthClient:  oauthClient,
		logger:       mylog.New("oauth"),
		publisher:    pub,
		providers:    providers,
		redirectURI:  redirectURI,
	}
}

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, oauthevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", oauthevents.TopicName, err)
	}

	return nil
}

// Authenticate restores the session of the given browser. A persisted session always wins
// over callback processing.
func (s *service) Authenticate(c context.Context, scope session.Scope) (session.AuthContext, bool, error) {
	user, found, err := s.sessionStore.GetUser(c, scope)
	if err != nil {
		return session.AuthContext{}, false, err
	}
	if !found {
		return session.AuthContext{}, false, nil
	}

	return session.AuthContext{
		Scope: scope,
		User:  user,
	}, true, nil
}

func (s *service) flowState(c context.Context, scope session.Scope) (FlowState, error) {
	_, found, err := s.sessionStore.GetUser(c, scope)
	if err != nil {
		return FlowAnonymous, err
	}
	if found {
		return FlowAuthenticated, nil
	}

	_, found, err = s.sessionStore.GetState(c, scope)
	if err != nil {
		return FlowAnonymous, err
	}
	if found {
		return FlowAwaitingRedirect, nil
	}

	return FlowAnonymous, nil
}

func (s *service) beginSignIn(c context.Context, scope session.Scope, providerName string) (string, error) {
	s.logger.Log(c, scope.BrowserUID, mylog.SeverityInfo, "Start sign-in with %s", providerName)

	provider, err := s.providers.Get(providerName)
	if err != nil {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("provider with name '%s' not known", providerName))
	}

	// A new attempt always starts a fresh cycle
	err = s.sessionStore.ClearCallbackHandled(c, scope)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error clearing callback guard: %s", err))
	}

	nonce, err := s.noncer.Create()
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error creating state nonce: %s", err))
	}

	err = s.sessionStore.PutState(c, scope, nonce)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error storing state nonce: %s", err))
	}

	authURL, err := s.oauthClient.ComposeAuthURL(c, oauthclient.ComposeAuthURLRequest{
		ProviderName:  providerName,
		CompletionURL: s.redirectURI,
		Scope:         provider.DefaultScopes,
		State:         nonce,
	})
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error composing auth url: %s", err))
	}

	s.publish(c, scope, oauthevents.OAuthSignInStarted{
		EventUID:     s.uuider.Create(),
		ProviderName: providerName,
		BrowserUID:   scope.BrowserUID,
		Scopes:       provider.DefaultScopes,
	})

	return authURL, nil
}

func (s *service) handleCallback(c context.Context, scope session.Scope, providerName string, query url.Values) CallbackResult {
	handled, err := s.sessionStore.IsCallbackHandled(c, scope)
	if err != nil {
		return s.fail(c, scope, providerName, fmt.Errorf("error reading callback guard: %s", err))
	}
	if handled {
		s.logger.Log(c, scope.BrowserUID, mylog.SeverityInfo, "Skipping duplicate callback handling")
		return CallbackResult{Outcome: OutcomeSkipped}
	}

	err = s.sessionStore.MarkCallbackHandled(c, scope)
	if err != nil {
		return s.fail(c, scope, providerName, fmt.Errorf("error setting callback guard: %s", err))
	}

	code := query.Get("code")
	state := query.Get("state")
	providerError := query.Get("error")

	if providerError != "" {
		s.logger.Log(c, scope.BrowserUID, mylog.SeverityWarn, "Provider reported error: %s (%s)", providerError, query.Get("error_description"))
		s.publish(c, scope, oauthevents.OAuthSignInFailed{
			EventUID:      s.uuider.Create(),
			ProviderName:  providerName,
			BrowserUID:    scope.BrowserUID,
			ProviderError: true,
			ErrorMessage:  providerError,
		})
		return CallbackResult{
			Outcome: OutcomeProviderError,
			Alert:   providerErrorPrefix + providerError,
		}
	}

	if code == "" || state == "" {
		return CallbackResult{Outcome: OutcomeNotACallback}
	}

	storedState, found, err := s.sessionStore.GetState(c, scope)
	if err != nil {
		return s.fail(c, scope, providerName, fmt.Errorf("error reading state nonce: %s", err))
	}
	if !found || state != storedState {
		s.logger.Log(c, scope.BrowserUID, mylog.SeverityWarn, "Invalid oauth state")

		err = s.sessionStore.RemoveState(c, scope)
		if err != nil {
			s.logger.Log(c, scope.BrowserUID, mylog.SeverityError, "Error removing state nonce: %s", err)
		}

		s.publish(c, scope, oauthevents.OAuthSignInRejected{
			EventUID:     s.uuider.Create(),
			ProviderName: providerName,
			BrowserUID:   scope.BrowserUID,
			Reason:       "state mismatch",
		})
		return CallbackResult{Outcome: OutcomeRejected}
	}

	user, err := s.completeSignIn(c, scope, code)
	if err != nil {
		return s.fail(c, scope, providerName, err)
	}

	s.publish(c, scope, oauthevents.OAuthSignInCompleted{
		EventUID:     s.uuider.Create(),
		ProviderName: providerName,
		BrowserUID:   scope.BrowserUID,
		UserUID:      user.UID,
		Email:        user.Email,
	})

	s.logger.Log(c, scope.BrowserUID, mylog.SeverityInfo, "Completed sign-in of user %s", user.UID)

	return CallbackResult{
		Outcome: OutcomeAuthenticated,
		User:    user,
	}
}

// completeSignIn only commits the session when token and profile were both obtained.
func (s *service) completeSignIn(c context.Context, scope session.Scope, code string) (session.User, error) {
	tokenResp, err := s.oauthClient.GetAccessToken(c, oauthclient.GetTokenRequest{
		Code:        code,
		RedirectURI: s.redirectURI,
	})
	if err != nil {
		return session.User{}, myerrors.NewBadGatewayError(fmt.Errorf("error exchanging code: %s", err))
	}

	profile, err := s.oauthClient.GetProfile(c, tokenResp.AccessToken)
	if err != nil {
		return session.User{}, myerrors.NewBadGatewayError(fmt.Errorf("error fetching profile: %s", err))
	}

	user := session.User{
		UID:         profile.UserID(),
		Name:        profile.Name,
		Email:       profile.Email,
		Picture:     profile.Picture,
		AccessToken: tokenResp.AccessToken,
		CreatedAt:   s.nower.Now(),
	}

	err = s.sessionStore.PutUser(c, scope, user)
	if err != nil {
		return session.User{}, myerrors.NewInternalError(fmt.Errorf("error storing session: %s", err))
	}

	err = s.sessionStore.RemoveState(c, scope)
	if err != nil {
		s.logger.Log(c, scope.BrowserUID, mylog.SeverityError, "Error removing state nonce: %s", err)
	}

	return user, nil
}

func (s *service) fail(c context.Context, scope session.Scope, providerName string, err error) CallbackResult {
	s.logger.Log(c, scope.BrowserUID, mylog.SeverityError, "Sign-in failed: %s", err)

	s.publish(c, scope, oauthevents.OAuthSignInFailed{
		EventUID:     s.uuider.Create(),
		ProviderName: providerName,
		BrowserUID:   scope.BrowserUID,
		ErrorMessage: err.Error(),
	})

	return CallbackResult{
		Outcome: OutcomeFailed,
		Alert:   genericFailureAlert,
	}
}

// signOut is idempotent and never calls out.
func (s *service) signOut(c context.Context, scope session.Scope) error {
	user, found, err := s.sessionStore.GetUser(c, scope)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error fetching session: %s", err))
	}

	err = s.sessionStore.RemoveUser(c, scope)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error removing session: %s", err))
	}

	err = s.sessionStore.ClearCallbackHandled(c, scope)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error clearing callback guard: %s", err))
	}

	if found {
		s.logger.Log(c, scope.BrowserUID, mylog.SeverityInfo, "Signed out user %s", user.UID)
		s.publish(c, scope, oauthevents.OAuthSignedOut{
			EventUID:   s.uuider.Create(),
			BrowserUID: scope.BrowserUID,
			UserUID:    user.UID,
		})
	}

	return nil
}

func (s *service) publish(c context.Context, scope session.Scope, event myevents.Event) {
	err := s.publisher.Publish(c, oauthevents.TopicName, event)
	if err != nil {
		s.logger.Log(c, scope.BrowserUID, mylog.SeverityError, "Error publishing %s: %s", event.GetEventTypeName(), err)
	}
}
