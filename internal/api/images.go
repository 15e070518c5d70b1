package api

import (
	"net/url"
	"strings"
)

// ImagePolicy decides which record image URLs pages may render.
// Only https URLs on an allowed host pass; others are skipped silently.
type ImagePolicy struct {
	hosts map[string]bool
}

// NewImagePolicy builds a policy from a host allow-list.
func NewImagePolicy(hosts []string) ImagePolicy {
	p := ImagePolicy{hosts: make(map[string]bool, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			p.hosts[h] = true
		}
	}
	return p
}

// Allowed reports whether raw may be rendered.
func (p ImagePolicy) Allowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" {
		return false
	}
	return p.hosts[strings.ToLower(u.Hostname())]
}

// Filter keeps the allowed URLs in their display order.
func (p ImagePolicy) Filter(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if p.Allowed(img) {
			out = append(out, img)
		}
	}
	return out
}

// First returns the first allowed image, or "".
func (p ImagePolicy) First(images []string) string {
	for _, img := range images {
		if p.Allowed(img) {
			return img
		}
	}
	return ""
}
