package oauthevents

const (
	TopicName                = "oauth"
	oauthSignInStartedName   = TopicName + ".signIn.started"
	oauthSignInCompletedName = TopicName + ".signIn.completed"
	oauthSignInRejectedName  = TopicName + ".signIn.rejected"
	oauthSignInFailedName    = TopicName + ".signIn.failed"
	oauthSignedOutName       = TopicName + ".signedOut"
)

// EventUID keeps equal looking events of separate attempts apart in the outbox.
type OAuthSignInStarted struct {
	EventUID     string
	ProviderName string
	BrowserUID   string
	Scopes       string
}

func (e OAuthSignInStarted) GetEventTypeName() string {
	return oauthSignInStartedName
}

func (e OAuthSignInStarted) GetAggregateName() string {
	return e.BrowserUID
}

type OAuthSignInCompleted struct {
	EventUID     string
	ProviderName string
	BrowserUID   string
	UserUID      string
	Email        string
}

func (e OAuthSignInCompleted) GetEventTypeName() string {
	return oauthSignInCompletedName
}

func (e OAuthSignInCompleted) GetAggregateName() string {
	return e.BrowserUID
}

// OAuthSignInRejected is raised when the returned state does not match the stored nonce.
type OAuthSignInRejected struct {
	EventUID     string
	ProviderName string
	BrowserUID   string
	Reason       string
}

func (e OAuthSignInRejected) GetEventTypeName() string {
	return oauthSignInRejectedName
}

func (e OAuthSignInRejected) GetAggregateName() string {
	return e.BrowserUID
}

type OAuthSignInFailed struct {
	EventUID      string
	ProviderName  string
	BrowserUID    string
	ProviderError bool
	ErrorMessage  string
}

func (e OAuthSignInFailed) GetEventTypeName() string {
	return oauthSignInFailedName
}

func (e OAuthSignInFailed) GetAggregateName() string {
	return e.BrowserUID
}

type OAuthSignedOut struct {
	EventUID   string
	BrowserUID string
	UserUID    string
}

func (e OAuthSignedOut) GetEventTypeName() string {
	return oauthSignedOutName
}

func (e OAuthSignedOut) GetAggregateName() string {
	return e.BrowserUID
}
