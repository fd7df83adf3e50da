package clients

import (
	"errors"
	"net/url"
	"strings"
)

// relativePath strips the base path so a credential embedded in it stays
// out of logs, span attributes and metric labels.
func (c *Client) relativePath(u *url.URL) string {
	if u == nil {
		return ""
	}

	if path := strings.TrimPrefix(u.Path, c.basePath); path != "" {
		return path
	}

	return "/"
}

// scrubError replaces the base URL in err. Transport errors from net/http
// quote the full request URL, token included.
func (c *Client) scrubError(err error) error {
	if err == nil || c.baseURL == "" {
		return err
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = strings.Replace(urlErr.URL, c.baseURL, redactedBase, 1)
	}

	if !strings.Contains(err.Error(), c.baseURL) {
		return err
	}

	return &scrubbedError{msg: strings.ReplaceAll(err.Error(), c.baseURL, redactedBase), cause: err}
}

// scrubbedError keeps the original chain for errors.Is and errors.As.
type scrubbedError struct {
	msg   string
	cause error
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.cause }
