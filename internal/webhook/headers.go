package webhook

import (
	"net/http"
	"strings"
)

const (
	headerSvixID        = "svix-id"
	headerSvixTimestamp = "svix-timestamp"
	headerSvixSignature = "svix-signature"
)

type svixHeaders struct {
	ID        string
	Timestamp string
	Signature string
}

// extractSvixHeaders scans every header key case-insensitively. Proxies and test clients
// may place non-canonical keys directly in the map, which http.Header.Get would miss.
func extractSvixHeaders(h http.Header) svixHeaders {
	var out svixHeaders
	for key, values := range h {
		value := firstNonEmpty(values)
		if value == "" {
			continue
		}
		switch {
		case strings.EqualFold(key, headerSvixID):
			out.ID = value
		case strings.EqualFold(key, headerSvixTimestamp):
			out.Timestamp = value
		case strings.EqualFold(key, headerSvixSignature):
			out.Signature = value
		}
	}
	return out
}

func (s svixHeaders) missing() []string {
	var names []string
	if s.ID == "" {
		names = append(names, headerSvixID)
	}
	if s.Timestamp == "" {
		names = append(names, headerSvixTimestamp)
	}
	if s.Signature == "" {
		names = append(names, headerSvixSignature)
	}
	return names
}

// header rebuilds a canonical header set for the verifier.
func (s svixHeaders) header() http.Header {
	h := make(http.Header, 3)
	h.Set(headerSvixID, s.ID)
	h.Set(headerSvixTimestamp, s.Timestamp)
	h.Set(headerSvixSignature, s.Signature)
	return h
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
