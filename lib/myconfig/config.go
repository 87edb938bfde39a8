package myconfig

import (
	"os"
	"strings"
)

const (
	portEnvVar                 = "PORT"
	appNameEnvVar              = "APP_NAME"
	backendURLEnvVar           = "BACKEND_URL"
	redirectURIEnvVar          = "OAUTH_REDIRECT_URI"
	linkedinClientIDEnvVar     = "LINKEDIN_CLIENT_ID"
	linkedinAuthHostnameEnvVar = "LINKEDIN_AUTH_HOSTNAME"
	projectEnvVar              = "GOOGLE_CLOUD_PROJECT"
	fakeBackendEnvVar          = "FAKE_BACKEND"

	FakeBackendPath = "/fakebackend"
)

type Config struct {
	Port                 string
	AppName              string
	BackendURL           string
	RedirectURI          string
	LinkedinClientID     string
	LinkedinAuthHostname string
	ProjectID            string
	// FakeBackend serves an in-process backend for local development
	FakeBackend bool
}

func FromEnv() Config {
	port := GetEnv(portEnvVar, "8080")
	fakeBackend := GetEnv(fakeBackendEnvVar, "") == "true"
	backendURL := GetEnv(backendURLEnvVar, "http://localhost:8000")
	if fakeBackend {
		backendURL = "http://localhost:" + port + FakeBackendPath
	}
	return Config{
		Port:                 port,
		AppName:              GetEnv(appNameEnvVar, "Agent Studio"),
		BackendURL:           strings.TrimSuffix(backendURL, "/"),
		RedirectURI:          GetEnv(redirectURIEnvVar, "http://localhost:"+port+"/auth/callback"),
		LinkedinClientID:     GetEnv(linkedinClientIDEnvVar, ""),
		LinkedinAuthHostname: GetEnv(linkedinAuthHostnameEnvVar, ""),
		ProjectID:            GetEnv(projectEnvVar, ""),
		FakeBackend:          fakeBackend,
	}
}

func (c Config) IsCloud() bool {
	return c.ProjectID != ""
}

func GetEnv(key string, defaultValue string) string {
	value, found := os.LookupEnv(key)
	if !found || value == "" {
		return defaultValue
	}
	return value
}
