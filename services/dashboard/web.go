package dashboard

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
	"github.com/MarcGrol/agentstudio/services/agent"
	"github.com/MarcGrol/agentstudio/services/jobsummary"
	"github.com/MarcGrol/agentstudio/services/session"
)

type webService struct {
	appName       string
	authenticator session.Authenticator
	scopeResolver *session.ScopeResolver
	summary       jobsummary.Fetcher
	triggers      *agent.Registry
	logger        mylog.Logger
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewService(appName string, authenticator session.Authenticator, scopeResolver *session.ScopeResolver, summary jobsummary.Fetcher, triggers *agent.Registry) *webService {
	return &webService{
		appName:       appName,
		authenticator: authenticator,
		scopeResolver: scopeResolver,
		summary:       summary,
		triggers:      triggers,
		logger:        mylog.New("dashboard"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/dashboard", s.dashboardPage()).Methods("GET")
	router.HandleFunc("/dashboard/agent/start", s.startAgentPage()).Methods("POST")

	return s.triggers.CreateTopics(c)
}

//go:embed templates
var templateFolder embed.FS
var (
	dashboardPageTemplate *template.Template
)

func init() {
	dashboardPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/dashboard.html"))
}

func (s *webService) dashboardPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		authContext, found, err := s.authenticator.Authenticate(c, s.scopeResolver.Resolve(w, r))
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		s.render(c, w, s.composePage(c, authContext, nil, agent.DefaultNiche))
	}
}

func (s *webService) startAgentPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		authContext, found, err := s.authenticator.Authenticate(c, s.scopeResolver.Resolve(w, r))
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		form, err := NewStartFormFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		result := s.triggers.Start(c, authContext.Scope.BrowserUID, form.Niche)

		s.render(c, w, s.composePage(c, authContext, &result, form.Niche))
	}
}

func (s *webService) composePage(c context.Context, authContext session.AuthContext, result *agent.Result, niche string) dashboardPageInfo {
	info := dashboardPageInfo{
		AppName:     s.appName,
		User:        authContext.User,
		StartResult: result,
		Starting:    s.triggers.InProgress(authContext.Scope.BrowserUID),
		Niche:       niche,
	}

	entries, err := s.summary.Fetch(c, authContext.User.UID)
	if err != nil {
		s.logger.Log(c, authContext.Scope.BrowserUID, mylog.SeverityWarn, "Error fetching job summary: %s", err)
		info.SummaryError = err.Error()
	}
	info.Entries = entries
	info.Counts = jobsummary.CountEntries(entries)

	return info
}

func (s *webService) render(c context.Context, w http.ResponseWriter, info dashboardPageInfo) {
	errorWriter := myhttp.NewWriter(s.logger)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := dashboardPageTemplate.Execute(w, info)
	if err != nil {
		errorWriter.WriteError(c, w, 3, myerrors.NewInternalError(err))
		return
	}
}
