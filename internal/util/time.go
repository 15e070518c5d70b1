package util

import "time"

// FormatTime formats a time in a human-readable way.
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// FormatMillis formats milliseconds since epoch in a human-readable way.
func FormatMillis(millis int64) string {
	return FormatTime(time.UnixMilli(millis))
}
