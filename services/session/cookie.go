package session

import (
	"net/http"

	"github.com/MarcGrol/agentstudio/lib/myhttp"
	"github.com/MarcGrol/agentstudio/lib/myuuid"
)

const (
	BrowserCookieName   = "browser_uid"
	TabCookieName       = "tab_uid"
	browserCookieMaxAge = 365 * 24 * 60 * 60
)

type ScopeResolver struct {
	uuider myuuid.UUIDer
}

func NewScopeResolver(uuider myuuid.UUIDer) *ScopeResolver {
	return &ScopeResolver{
		uuider: uuider,
	}
}

// Resolve returns the scope of the calling browser tab and hands out new cookies when they are missing.
// The browser cookie is persistent; the tab cookie has no expiry so it ends with the browser session.
func (sr *ScopeResolver) Resolve(w http.ResponseWriter, r *http.Request) Scope {
	return Scope{
		BrowserUID: sr.resolveCookie(w, r, BrowserCookieName, browserCookieMaxAge),
		TabUID:     sr.resolveCookie(w, r, TabCookieName, 0),
	}
}

func (sr *ScopeResolver) resolveCookie(w http.ResponseWriter, r *http.Request, name string, maxAge int) string {
	cookie, err := r.Cookie(name)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	value := sr.uuider.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   myhttp.IsSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
	// Make the new value visible to handlers further down the chain
	r.AddCookie(&http.Cookie{Name: name, Value: value})

	return value
}
