// Package device summarises the client that submitted a verification, for
// the evidence snapshot stored on a farmer profile.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// Summary is the parsed view of a User-Agent header.
type Summary struct {
	DisplayName string `json:"display_name"`
	Browser     string `json:"browser,omitempty"`
	OS          string `json:"os,omitempty"`
	Mobile      bool   `json:"mobile"`
}

// ParseUserAgent returns a display name such as "Chrome on Intel Mac OS X 10_15_7".
func ParseUserAgent(userAgent string) string {
	return Summarize(userAgent).DisplayName
}

// Summarize parses a User-Agent header. An empty header yields "Unknown Device".
func Summarize(userAgent string) Summary {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return Summary{DisplayName: unknownDevice}
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}

	name := browser
	if name == "" {
		name = "Unknown Browser"
	}
	where := os
	if where == "" {
		where = "Unknown OS"
	}

	return Summary{
		DisplayName: strings.TrimSpace(name + " on " + where),
		Browser:     browser,
		OS:          os,
		Mobile:      ua.Mobile(),
	}
}
