package api

import (
	"fmt"
	"html"
	"net/http"
)

const (
	faviconBackground = "#92400e"
	faviconLetter     = "F"
)

// faviconSVG draws a rounded square with a single letter.
func faviconSVG(bg, letter string) string {
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 32 32"><rect width="32" height="32" rx="6" fill="%s"/>`+
			`<text x="50%%" y="50%%" dominant-baseline="central" text-anchor="middle" fill="white" `+
			`font-family="system-ui, -apple-system, sans-serif" font-weight="600" font-size="20">%s</text></svg>`,
		html.EscapeString(bg), html.EscapeString(letter),
	)
}

// GetFavicon serves the generated favicon.
func (h *Handler) GetFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(faviconSVG(faviconBackground, faviconLetter)))
}
