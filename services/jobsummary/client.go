package jobsummary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MarcGrol/agentstudio/lib/myhttpclient"
	"github.com/MarcGrol/agentstudio/lib/mylog"
	"github.com/MarcGrol/agentstudio/lib/mytime"
)

// MaxEntries bounds the number of entries synthesized from the backend counts.
const MaxEntries = 1000

//go:generate mockgen -source=client.go -package jobsummary -destination client_mock.go Fetcher
type Fetcher interface {
	Fetch(c context.Context, userID string) ([]Entry, error)
}

type Client struct {
	backendURL string
	httpClient myhttpclient.HTTPSender
	nower      mytime.Nower
	logger     mylog.Logger
}

func NewClient(backendURL string, httpClient myhttpclient.HTTPSender, nower mytime.Nower) *Client {
	return &Client{
		backendURL: strings.TrimSuffix(backendURL, "/"),
		httpClient: httpClient,
		nower:      nower,
		logger:     mylog.New("jobsummary"),
	}
}

// Fetch retrieves the aggregate counts and expands them into one entry per job. Nothing is requested
// for an unknown user.
func (cl *Client) Fetch(c context.Context, userID string) ([]Entry, error) {
	if userID == "" {
		return []Entry{}, nil
	}

	httpRespCode, respBody, err := cl.httpClient.Send(c, http.MethodGet, cl.backendURL+"/agent/summary", nil, nil)
	if err != nil {
		return []Entry{}, fmt.Errorf("error fetching job summary: %s", err)
	}

	if httpRespCode != http.StatusOK {
		return []Entry{}, fmt.Errorf("error fetching job summary: %d", httpRespCode)
	}

	resp := summaryResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return []Entry{}, fmt.Errorf("error parsing job summary: %s", err)
	}

	cl.logger.Log(c, userID, mylog.SeverityDebug, "Job summary: completed=%d, failed=%d", resp.TotalCompleted, resp.TotalFailed)

	err = validateCounts(resp)
	if err != nil {
		return []Entry{}, err
	}

	now := cl.nower.Now()
	entries := make([]Entry, 0, resp.TotalCompleted+resp.TotalFailed)
	entries = appendEntries(entries, StatusCompleted, resp.TotalCompleted, userID, now)
	entries = appendEntries(entries, StatusFailed, resp.TotalFailed, userID, now)

	return entries, nil
}

func validateCounts(resp summaryResponse) error {
	if resp.TotalCompleted < 0 || resp.TotalFailed < 0 {
		return fmt.Errorf("invalid job summary: negative count")
	}
	if resp.TotalCompleted > MaxEntries || resp.TotalFailed > MaxEntries || resp.TotalCompleted+resp.TotalFailed > MaxEntries {
		return fmt.Errorf("invalid job summary: more than %d jobs", MaxEntries)
	}
	return nil
}

func appendEntries(entries []Entry, status Status, count int, userID string, now time.Time) []Entry {
	for i := 1; i <= count; i++ {
		entries = append(entries, Entry{
			ID:         fmt.Sprintf("%s-%d", status, i),
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
			UserID:     userID,
			UserLogged: true,
		})
	}
	return entries
}
