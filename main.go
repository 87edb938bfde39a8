package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/agentstudio/lib/myconfig"
	"github.com/MarcGrol/agentstudio/lib/myhttpclient"
	"github.com/MarcGrol/agentstudio/lib/mynonce"
	"github.com/MarcGrol/agentstudio/lib/mypublisher"
	"github.com/MarcGrol/agentstudio/lib/mypubsub"
	"github.com/MarcGrol/agentstudio/lib/myqueue"
	"github.com/MarcGrol/agentstudio/lib/mystore"
	"github.com/MarcGrol/agentstudio/lib/mytime"
	"github.com/MarcGrol/agentstudio/lib/myuuid"
	"github.com/MarcGrol/agentstudio/lib/myvault"
	"github.com/MarcGrol/agentstudio/services/agent"
	"github.com/MarcGrol/agentstudio/services/backendcontract"
	"github.com/MarcGrol/agentstudio/services/dashboard"
	"github.com/MarcGrol/agentstudio/services/jobsummary"
	"github.com/MarcGrol/agentstudio/services/oauth"
	"github.com/MarcGrol/agentstudio/services/oauth/oauthclient"
	"github.com/MarcGrol/agentstudio/services/oauth/providers"
	"github.com/MarcGrol/agentstudio/services/session"
	"github.com/MarcGrol/agentstudio/services/warmup"
)

func main() {
	c := context.Background()

	config := myconfig.FromEnv()
	displayAppname(config.AppName)

	router, cleanup, err := createRouter(c, config)
	if err != nil {
		log.Fatalf("Error creating services: %s", err)
	}
	defer cleanup()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Port),
		Handler: router,
	}
	go listenAndServe(server)
	waitForStopSignal()

	err = shutdown(server)
	if err != nil {
		log.Printf("Error stopping webserver: %s", err)
	}
	log.Printf("Server stopped")
}

func createRouter(c context.Context, config myconfig.Config) (*mux.Router, func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for _, f := range cleanups {
			f()
		}
	}

	router := mux.NewRouter()
	if config.FakeBackend {
		router.PathPrefix(myconfig.FakeBackendPath).Handler(
			http.StripPrefix(myconfig.FakeBackendPath, backendcontract.NewFakeBackend().Handler()))
	}

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}
	httpClient := myhttpclient.NewJSONHTTPClient()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		return nil, cleanup, fmt.Errorf("error creating pubsub: %s", err)
	}
	cleanups = append(cleanups, pubsubCleanup)

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		return nil, cleanup, fmt.Errorf("error creating queue: %s", err)
	}
	cleanups = append(cleanups, queueCleanup)

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		return nil, cleanup, fmt.Errorf("error creating publisher: %s", err)
	}
	cleanups = append(cleanups, publisherCleanup)
	publisher.RegisterEndpoints(c, router)

	// Origin scoped: survives restarts when running in the cloud
	sessionVault, vaultCleanup, err := myvault.New[session.StoredValue](c)
	if err != nil {
		return nil, cleanup, fmt.Errorf("error creating session vault: %s", err)
	}
	cleanups = append(cleanups, vaultCleanup)

	// Tab scoped: always in memory
	tabStore, tabCleanup, err := mystore.NewInMemoryStore[session.StoredValue](c)
	if err != nil {
		return nil, cleanup, fmt.Errorf("error creating tab store: %s", err)
	}
	cleanups = append(cleanups, tabCleanup)

	sessionStore := session.NewStore(sessionVault, tabStore)
	scopeResolver := session.NewScopeResolver(uuider)

	oauthProviders := providers.NewProviders()
	oauthProviders.Set(providers.LinkedIn, config.LinkedinClientID, config.LinkedinAuthHostname)

	oauthService := oauth.NewService(sessionStore, scopeResolver, nower, mynonce.New(), uuider,
		oauthclient.NewOAuthClient(oauthProviders, config.BackendURL, httpClient),
		publisher, oauthProviders, config.RedirectURI)
	err = oauthService.RegisterEndpoints(c, router)
	if err != nil {
		return nil, cleanup, fmt.Errorf("error registering oauth endpoints: %s", err)
	}

	dashboardService := dashboard.NewService(config.AppName, oauthService, scopeResolver,
		jobsummary.NewClient(config.BackendURL, httpClient, nower),
		agent.NewRegistry(config.BackendURL, httpClient, uuider, publisher))
	err = dashboardService.RegisterEndpoints(c, router)
	if err != nil {
		return nil, cleanup, fmt.Errorf("error registering dashboard endpoints: %s", err)
	}

	warmup.NewService(sessionVault).RegisterEndpoints(c, router)

	return router, cleanup, nil
}

func listenAndServe(server *http.Server) {
	log.Printf("Starting webserver on %s", server.Addr)
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Error starting webserver on %s: %s", server.Addr, err)
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("error shutting down: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	figure.NewFigure(appname, "cybermedium", true).Print()
	fmt.Println()
}
