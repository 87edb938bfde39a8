package dashboard

import (
	"github.com/MarcGrol/agentstudio/services/agent"
	"github.com/MarcGrol/agentstudio/services/jobsummary"
	"github.com/MarcGrol/agentstudio/services/session"
)

type dashboardPageInfo struct {
	AppName      string
	User         session.User
	Counts       jobsummary.Counts
	Entries      []jobsummary.Entry
	SummaryError string
	StartResult  *agent.Result
	Starting     bool
	Niche        string
}
