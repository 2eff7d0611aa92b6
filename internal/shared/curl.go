// Utilities for lifting a browser session out of a "Copy as cURL" command.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlCookieRegex = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
	curlURLRegex    = regexp.MustCompile(`curl\s+'(https?://[^']+)'|curl\s+"(https?://[^"]+)"|curl\s+(https?://\S+)`)
)

// CurlHeaders represents parsed headers and cookies from a cURL command.
type CurlHeaders struct {
	URL     string
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(filepath string) (*CurlHeaders, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts the URL, headers and cookie.
//
// A cookie passed with -b wins over a Cookie header.
func ParseCurlCommand(curlCmd string) (*CurlHeaders, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	var headerCookie string

	for _, match := range curlHeaderRegex.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := strings.Cut(firstNonEmpty(match[1:]...), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		headers[key] = value
	}

	cookie := headerCookie
	if m := curlCookieRegex.FindStringSubmatch(curlCmd); m != nil {
		cookie = firstNonEmpty(m[1:]...)
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	var rawURL string
	if m := curlURLRegex.FindStringSubmatch(curlCmd); m != nil {
		rawURL = firstNonEmpty(m[1:]...)
	}

	return &CurlHeaders{URL: rawURL, Headers: headers, Cookie: cookie}, nil
}

// Header returns the value of the named header, ignoring case.
func (c *CurlHeaders) Header(name string) string {
	for key, value := range c.Headers {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}

// ToSession builds a [Session] from the parsed command.
//
// The CSRF token comes from the X-CSRFToken header, falling back to the csrftoken cookie.
func (c *CurlHeaders) ToSession() (*Session, error) {
	session := &Session{
		Cookie:    c.Cookie,
		CSRFToken: c.Header(CSRFHeader),
	}
	if session.CSRFToken == "" {
		session.CSRFToken = CookieValue(c.Cookie, CSRFCookie)
	}
	if session.CSRFToken == "" {
		return nil, fmt.Errorf("%w: no CSRF token in headers or cookies", ErrMissingSession)
	}

	if c.URL != "" {
		if base, err := baseURL(c.URL); err == nil {
			session.BaseURL = base
		}
	}

	return session, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
