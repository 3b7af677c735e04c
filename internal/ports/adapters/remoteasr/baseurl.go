package remoteasr

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

const defaultOrigin = "https://api.openai.com"

var defaultHosts = []string{"api.openai.com"}

// origin trims the configured base URL down to scheme://host[:port].
func origin(baseURL string) string {
	if s := strings.TrimRight(strings.TrimSpace(baseURL), "/"); s != "" {
		return s
	}
	return defaultOrigin
}

// apiBase is the client base path; the library appends /audio/transcriptions.
func apiBase(baseURL string) string {
	return origin(baseURL) + "/v1"
}

// ValidateBaseURL refuses anything but an https origin whose host is in
// allowedHosts (api.openai.com when empty). The audio and API key are sent
// there.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	raw := origin(baseURL)
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid asr base url: %w", err)
	}

	var reason string
	switch {
	case !u.IsAbs() || u.Host == "":
		reason = "absolute URL with host is required"
	case u.User != nil:
		reason = "userinfo is not allowed"
	case u.RawQuery != "" || u.Fragment != "":
		reason = "query and fragment are not allowed"
	case !strings.EqualFold(u.Scheme, "https"):
		reason = "https is required"
	default:
		host := strings.ToLower(u.Hostname())
		if !slices.Contains(hostAllowlist(allowedHosts), host) {
			reason = fmt.Sprintf("host %q is not in allowed hosts", host)
		}
	}
	if reason != "" {
		return fmt.Errorf("invalid asr base url %q: %s", raw, reason)
	}
	return nil
}

// hostAllowlist reduces entries like "https://asr.internal:8443/" to bare
// lowercase host names.
func hostAllowlist(entries []string) []string {
	var hosts []string
	for _, e := range entries {
		h := strings.ToLower(strings.TrimSpace(e))
		if i := strings.Index(h, "://"); i >= 0 {
			h = h[i+3:]
		}
		h, _, _ = strings.Cut(h, "/")
		h, _, _ = strings.Cut(h, ":")
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	if len(hosts) == 0 {
		return defaultHosts
	}
	return hosts
}
