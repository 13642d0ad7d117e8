package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// IsHTMX reports whether the request was initiated by htmx (Hx-Request: true).
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Request"), "true")
}

// IsBoosted reports whether the request was initiated by hx-boost (Hx-Boosted: true).
func IsBoosted(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Boosted"), "true")
}

// SetHXRedirect instructs htmx to redirect the browser to the given URL.
func SetHXRedirect(w http.ResponseWriter, url string) { w.Header().Set("Hx-Redirect", url) }

// SetHXPushURL pushes the given URL into the browser history for the new content.
func SetHXPushURL(w http.ResponseWriter, url string) { w.Header().Set("Hx-Push-Url", url) }

// SetHXTrigger triggers a client-side event after swap with optional payload.
// It sets the Hx-Trigger response header as a JSON object: {"<event>": <payload>}.
// If payload is nil, the value true is used for the event.
func SetHXTrigger(w http.ResponseWriter, event string, payload any) {
	var value any = true
	if payload != nil {
		value = payload
	}
	b, err := json.Marshal(map[string]any{event: value})
	if err != nil {
		w.Header().Set("Hx-Trigger", "{\""+event+"\":true}")
		return
	}
	w.Header().Set("Hx-Trigger", string(b))
}
