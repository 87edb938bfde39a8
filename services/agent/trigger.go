package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/MarcGrol/agentstudio/lib/myhttpclient"
	"github.com/MarcGrol/agentstudio/lib/mylog"
	"github.com/MarcGrol/agentstudio/lib/mypublisher"
	"github.com/MarcGrol/agentstudio/lib/myuuid"
	"github.com/MarcGrol/agentstudio/services/agent/agentevents"
)

type Trigger struct {
	owner      string
	backendURL string
	httpClient myhttpclient.HTTPSender
	uuider     myuuid.UUIDer
	publisher  mypublisher.Publisher
	logger     mylog.Logger
	inFlight   atomic.Bool
}

func NewTrigger(owner string, backendURL string, httpClient myhttpclient.HTTPSender, uuider myuuid.UUIDer, pub mypublisher.Publisher) *Trigger {
	return &Trigger{
		owner:      owner,
		backendURL: strings.TrimSuffix(backendURL, "/"),
		httpClient: httpClient,
		uuider:     uuider,
		publisher:  pub,
		logger:     mylog.New("agent"),
	}
}

// InProgress reports whether a start request of this trigger is still outstanding.
func (t *Trigger) InProgress() bool {
	return t.inFlight.Load()
}

func (t *Trigger) Start(c context.Context, niche string) Result {
	if strings.TrimSpace(niche) == "" {
		return Result{Status: StatusFailed, Message: "missing niche"}
	}

	if !t.inFlight.CompareAndSwap(false, true) {
		return Result{Status: StatusFailed, Message: "agent start already in progress"}
	}
	defer t.inFlight.Store(false)

	attemptUID := t.uuider.Create()
	t.logger.Log(c, t.owner, mylog.SeverityInfo, "Start agent for niche '%s' (attempt %s)", niche, attemptUID)

	result := t.start(c, niche)

	err := t.publisher.Publish(c, agentevents.TopicName, agentevents.AgentStartCompleted{
		BrowserUID: t.owner,
		AttemptUID: attemptUID,
		Niche:      niche,
		Status:     string(result.Status),
		Message:    result.Message,
	})
	if err != nil {
		t.logger.Log(c, t.owner, mylog.SeverityError, "Error publishing agent start: %s", err)
	}

	return result
}

func (t *Trigger) start(c context.Context, niche string) Result {
	requestBody, err := json.Marshal(startRequest{Niche: niche})
	if err != nil {
		return Result{Status: StatusFailed, Message: err.Error()}
	}

	httpRespCode, respBody, err := t.httpClient.Send(c, http.MethodPost, t.backendURL+"/agent/start", nil, requestBody)
	if err != nil {
		t.logger.Log(c, t.owner, mylog.SeverityError, "Error starting agent: %s", err)
		return Result{Status: StatusFailed, Message: err.Error()}
	}

	if httpRespCode < 200 || httpRespCode >= 300 {
		message := extractErrorMessage(respBody)
		if message == "" {
			message = fmt.Sprintf("agent start failed with http status %d", httpRespCode)
		}
		t.logger.Log(c, t.owner, mylog.SeverityWarn, "Agent start rejected: %d: %s", httpRespCode, message)
		return Result{Status: StatusFailed, Message: message}
	}

	resp := startResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil || resp.Message == "" {
		return Result{Status: StatusCompleted, Message: defaultStartedMessage}
	}

	return Result{Status: StatusCompleted, Message: resp.Message}
}

// extractErrorMessage returns the most specific message of an error body.
func extractErrorMessage(body []byte) string {
	fields := map[string]any{}
	err := json.Unmarshal(body, &fields)
	if err != nil {
		return ""
	}

	for _, name := range []string{"message", "detail", "error"} {
		value, ok := fields[name].(string)
		if ok && value != "" {
			return value
		}
	}

	return ""
}
