package shared

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	CSRFHeader = "X-CSRFToken"
	CSRFCookie = "csrftoken"
)

// Session holds the browser credentials used for mutating API calls.
type Session struct {
	BaseURL   string `json:"base_url,omitempty"`
	Cookie    string `json:"cookie"`
	CSRFToken string `json:"csrf_token"`
}

// LoadSession reads a session file written by [SaveSession].
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSession, path)
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &session, nil
}

// SaveSession writes the session to path with owner-only permissions.
func SaveSession(path string, session *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := MarshalJSON(session, true)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// CookieValue extracts a single cookie from a Cookie header value.
func CookieValue(cookie, name string) string {
	for _, part := range strings.Split(cookie, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && key == name {
			return value
		}
	}
	return ""
}

func baseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("not an absolute url: %s", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}
