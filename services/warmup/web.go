package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/agentstudio/lib/mycontext"
	"github.com/MarcGrol/agentstudio/lib/myerrors"
	"github.com/MarcGrol/agentstudio/lib/myhttp"
	"github.com/MarcGrol/agentstudio/lib/mylog"
	"github.com/MarcGrol/agentstudio/lib/myvault"
	"github.com/MarcGrol/agentstudio/services/session"
)

const probeUID = "warmup_probe"

type webService struct {
	logger mylog.Logger
	vault  myvault.VaultReader[session.StoredValue]
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewService(vault myvault.VaultReader[session.StoredValue]) *webService {
	return &webService{
		logger: mylog.New("warmup"),
		vault:  vault,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")
}

// warmupPage opens the connection to the session backend before real traffic arrives.
func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		_, _, err := s.vault.Get(c, probeUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewUnavailableError(err))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed warmup request",
		})
	}
}
