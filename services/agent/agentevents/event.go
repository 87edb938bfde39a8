package agentevents

const (
	TopicName               = "agent"
	agentStartCompletedName = TopicName + ".startCompleted"
)

// AgentStartCompleted is raised once per start attempt, successful or not.
type AgentStartCompleted struct {
	BrowserUID string
	AttemptUID string
	Niche      string
	Status     string
	Message    string
}

func (e AgentStartCompleted) GetEventTypeName() string {
	return agentStartCompletedName
}

func (e AgentStartCompleted) GetAggregateName() string {
	return e.BrowserUID
}
