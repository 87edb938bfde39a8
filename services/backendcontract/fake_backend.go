package backendcontract

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/agentstudio/lib/mylog"
	"github.com/MarcGrol/agentstudio/lib/mystore"
)

const (
	summaryUID  = "summary"
	tokenPrefix = "token-"
)

type JobCounts struct {
	Completed int
	Failed    int
}

// FakeBackend mimics the content-agent backend, including its quirks.
type FakeBackend struct {
	Store  *mystore.InMemoryStore[JobCounts]
	logger mylog.Logger
}

func NewFakeBackend() *FakeBackend {
	store, _, _ := mystore.NewInMemoryStore[JobCounts](context.Background())
	return &FakeBackend{
		Store:  store,
		logger: mylog.New("fakebackend"),
	}
}

func (b *FakeBackend) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/auth/linkedin/token", b.token()).Methods("POST")
	router.HandleFunc("/auth/linkedin/me", b.me()).Methods("GET")
	router.HandleFunc("/agent/start", b.start()).Methods("POST")
	router.HandleFunc("/agent/summary", b.summary()).Methods("GET")
	return router
}

func (b *FakeBackend) token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := struct {
			Code        string `json:"code"`
			RedirectURI string `json:"redirect_uri"`
		}{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil || req.Code == "" || req.RedirectURI == "" {
			b.writeJSON(r.Context(), w, http.StatusBadRequest, map[string]any{"detail": "code and redirect_uri are required"})
			return
		}

		// Dirty exception coded into fake: LinkedIn answers without a token
		if req.Code == "no-token" {
			b.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"token_type": "Bearer"})
			return
		}

		b.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"access_token": tokenPrefix + req.Code,
			"expires_in":   5184000,
		})
	}
}

func (b *FakeBackend) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !strings.HasPrefix(token, tokenPrefix) {
			b.writeJSON(r.Context(), w, http.StatusUnauthorized, map[string]any{"detail": "invalid token"})
			return
		}

		b.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"sub":     strings.TrimPrefix(token, tokenPrefix),
			"name":    "Marc Grol",
			"email":   "marc@example.com",
			"picture": "https://example.com/marc.png",
		})
	}
}

func (b *FakeBackend) start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := struct {
			Niche string `json:"niche"`
		}{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil || req.Niche == "" {
			b.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, map[string]any{
				"detail": []map[string]any{{"loc": []string{"body", "niche"}, "msg": "field required"}},
			})
			return
		}

		succeeded := req.Niche != "quota"
		err = b.count(r.Context(), succeeded)
		if err != nil {
			b.writeJSON(r.Context(), w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
			return
		}

		if !succeeded {
			b.writeJSON(r.Context(), w, http.StatusInternalServerError, map[string]any{"message": "quota exceeded"})
			return
		}

		b.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"status": "success", "message": "Workflow completed"})
	}
}

func (b *FakeBackend) count(c context.Context, succeeded bool) error {
	return b.Store.RunInTransaction(c, func(c context.Context) error {
		counts, _, err := b.Store.Get(c, summaryUID)
		if err != nil {
			return err
		}
		if succeeded {
			counts.Completed++
		} else {
			counts.Failed++
		}
		return b.Store.Put(c, summaryUID, counts)
	})
}

func (b *FakeBackend) summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, _, err := b.Store.Get(r.Context(), summaryUID)
		if err != nil {
			b.writeJSON(r.Context(), w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
			return
		}

		b.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"total_completed": counts.Completed,
			"total_failed":    counts.Failed,
		})
	}
}

func (b *FakeBackend) writeJSON(c context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		b.logger.Log(c, "", mylog.SeverityError, "Error writing fake backend response: %s", err)
	}
}
