package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jmgilman/go/xfer/errors"
)

// HTTPTransport uploads each file with a PUT to BaseURL joined with the
// file's relative name. WebDAV servers and most simple upload endpoints
// accept this.
type HTTPTransport struct {
	// BaseURL is the collection files are uploaded into.
	BaseURL string

	// Username and Password enable basic auth when Username is set.
	Username string
	Password string

	// Header is added to every request.
	Header http.Header

	// Client sends the requests. Default: http.DefaultClient.
	Client *http.Client
}

// Upload PUTs the pulled stream to BaseURL/name.
func (t *HTTPTransport) Upload(ctx context.Context, name string, size int64, pull PullFunc) error {
	target, err := t.url(name)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid upload url",
			map[string]interface{}{"base_url": t.BaseURL})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, NewPullReader(pull))
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "failed to build upload request")
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")
	for k, vs := range t.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if t.Username != "" {
		req.SetBasicAuth(t.Username, t.Password)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), errors.CodeCancelled, "upload cancelled")
		}
		return errors.WrapWithContext(err, errors.CodeNetwork, "upload request failed",
			map[string]interface{}{"url": target})
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.WithContextMap(
			errors.Newf(errors.CodeNetwork, "upload rejected: %s", resp.Status),
			map[string]interface{}{"url": target, "status": resp.StatusCode},
		)
	}
	return nil
}

func (t *HTTPTransport) url(name string) (string, error) {
	base, err := url.Parse(t.BaseURL)
	if err != nil {
		return "", err
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("base url %q needs a scheme and host", t.BaseURL)
	}

	parts := strings.Split(strings.Trim(name, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.TrimSuffix(base.String(), "/") + "/" + strings.Join(parts, "/"), nil
}
