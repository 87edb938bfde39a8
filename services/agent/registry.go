package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/MarcGrol/agentstudio/lib/myhttpclient"
	"github.com/MarcGrol/agentstudio/lib/mypublisher"
	"github.com/MarcGrol/agentstudio/lib/myuuid"
	"github.com/MarcGrol/agentstudio/services/agent/agentevents"
)

type registryEntry struct {
	trigger *Trigger
	users   int
}

// Registry holds one Trigger per browser, so the in-flight flag is per browser.
// A trigger only stays registered while a start for its browser is running.
type Registry struct {
	sync.Mutex
	entries    map[string]*registryEntry
	backendURL string
	httpClient myhttpclient.HTTPSender
	uuider     myuuid.UUIDer
	publisher  mypublisher.Publisher
}

func NewRegistry(backendURL string, httpClient myhttpclient.HTTPSender, uuider myuuid.UUIDer, pub mypublisher.Publisher) *Registry {
	return &Registry{
		entries:    map[string]*registryEntry{},
		backendURL: backendURL,
		httpClient: httpClient,
		uuider:     uuider,
		publisher:  pub,
	}
}

func (r *Registry) CreateTopics(c context.Context) error {
	err := r.publisher.CreateTopic(c, agentevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", agentevents.TopicName, err)
	}

	return nil
}

// Start runs a start attempt on the trigger of the given browser.
func (r *Registry) Start(c context.Context, browserUID string, niche string) Result {
	trigger := r.acquire(browserUID)
	defer r.release(browserUID)

	return trigger.Start(c, niche)
}

func (r *Registry) InProgress(browserUID string) bool {
	r.Lock()
	defer r.Unlock()

	entry, found := r.entries[browserUID]
	return found && entry.trigger.InProgress()
}

// Size returns the number of browsers with a start in progress.
func (r *Registry) Size() int {
	r.Lock()
	defer r.Unlock()

	return len(r.entries)
}

func (r *Registry) acquire(browserUID string) *Trigger {
	r.Lock()
	defer r.Unlock()

	entry, found := r.entries[browserUID]
	if !found {
		entry = &registryEntry{
			trigger: NewTrigger(browserUID, r.backendURL, r.httpClient, r.uuider, r.publisher),
		}
		r.entries[browserUID] = entry
	}
	entry.users++

	return entry.trigger
}

func (r *Registry) release(browserUID string) {
	r.Lock()
	defer r.Unlock()

	entry, found := r.entries[browserUID]
	if !found {
		return
	}
	entry.users--
	if entry.users <= 0 {
		delete(r.entries, browserUID)
	}
}
