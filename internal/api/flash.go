package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/amterp/forts/internal/flow"
)

const flashCookie = "forts_flash"

// setFlash stores a notification for the page the user is redirected to.
func setFlash(w http.ResponseWriter, n flow.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads and clears the pending notification, if any.
func takeFlash(w http.ResponseWriter, r *http.Request) *flow.Notification {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var n flow.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	return &n
}
