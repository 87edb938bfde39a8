package oauth

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/agentstudio/lib/mycontext"
	"github.com/MarcGrol/agentstudio/lib/myerrors"
	"github.com/MarcGrol/agentstudio/lib/myhttp"
	"github.com/MarcGrol/agentstudio/lib/mylog"
	"github.com/MarcGrol/agentstudio/lib/mynonce"
	"github.com/MarcGrol/agentstudio/lib/mypublisher"
	"github.com/MarcGrol/agentstudio/lib/mytime"
	"github.com/MarcGrol/agentstudio/lib/myuuid"
	"github.com/MarcGrol/agentstudio/services/oauth/oauthclient"
	"github.com/MarcGrol/agentstudio/services/oauth/providers"
	"github.com/MarcGrol/agentstudio/services/session"
)

const (
	CallbackPath         = "/auth/callback"
	AuthenticatedLanding = "/dashboard"
)

type webService struct {
	service       *service
	scopeResolver *session.ScopeResolver
	providerName  string
	logger        mylog.Logger
}

func NewService(sessionStore session.Store, scopeResolver *session.ScopeResolver, nower mytime.Nower, noncer mynonce.Noncer, uuider myuuid.UUIDer, oauthClient oauthclient.OauthClient, pub mypublisher.Publisher, oauthProviders providers.OAuthProvider, redirectURI string) *webService {
	return &webService{
		service:       newService(sessionStore, nower, noncer, uuider, oauthClient, pub, oauthProviders, redirectURI),
		scopeResolver: scopeResolver,
		providerName:  providers.LinkedIn,
		logger:        mylog.New("oauth"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/", s.loginPage()).Methods("GET")
	router.HandleFunc("/login", s.loginPage()).Methods("GET")

	router.HandleFunc("/auth/signin", s.signInPage()).Methods("POST")
	router.HandleFunc(CallbackPath, s.callbackPage()).Methods("GET")
	router.HandleFunc("/auth/signout", s.signOutPage()).Methods("POST")

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	return nil
}

// Authenticate makes the flow controller the source of the authentication context for other services.
func (s *webService) Authenticate(c context.Context, scope session.Scope) (session.AuthContext, bool, error) {
	return s.service.Authenticate(c, scope)
}

//go:embed templates
var templateFolder embed.FS
var (
	loginPageTemplate *template.Template
)

func init() {
	loginPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/login.html"))
}

func (s *webService) loginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		scope := s.scopeResolver.Resolve(w, r)

		state, err := s.service.flowState(c, scope)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if state == FlowAuthenticated {
			http.Redirect(w, r, AuthenticatedLanding, http.StatusSeeOther)
			return
		}

		s.renderLoginPage(c, w, loginPageInfo{
			ProviderName: s.providerName,
			State:        state,
		})
	}
}

func (s *webService) signInPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		scope := s.scopeResolver.Resolve(w, r)

		authenticationURL, err := s.service.beginSignIn(c, scope, s.providerName)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		http.Redirect(w, r, authenticationURL, http.StatusSeeOther)
	}
}

func (s *webService) callbackPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		scope := s.scopeResolver.Resolve(w, r)

		// Restoring a session takes precedence over a stale callback url
		_, found, err := s.service.Authenticate(c, scope)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if found {
			http.Redirect(w, r, AuthenticatedLanding, http.StatusSeeOther)
			return
		}

		result := s.service.handleCallback(c, scope, s.providerName, r.URL.Query())
		if result.Outcome == OutcomeAuthenticated {
			// Also drops code and state from the visible url
			http.Redirect(w, r, AuthenticatedLanding, http.StatusSeeOther)
			return
		}

		s.renderLoginPage(c, w, loginPageInfo{
			ProviderName: s.providerName,
			State:        result.FlowState(),
			Alert:        result.Alert,
		})
	}
}

func (s *webService) signOutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		scope := s.scopeResolver.Resolve(w, r)

		err := s.service.signOut(c, scope)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *webService) renderLoginPage(c context.Context, w http.ResponseWriter, info loginPageInfo) {
	errorWriter := myhttp.NewWriter(s.logger)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := loginPageTemplate.Execute(w, info)
	if err != nil {
		errorWriter.WriteError(c, w, 2, myerrors.NewInternalError(err))
		return
	}
}
