package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Doer executes a single HTTP request. *http.Client satisfies it;
// tests substitute scripted transports.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// mobileClient issues requests the way the Steam mobile app does:
// mobile headers on every request, cookies attached from the
// domain-indexed store, response cookies captured back into it.
// Redirects are never followed automatically, the session guard needs
// to read redirect targets and no endpoint used here relies on them.
type mobileClient struct {
	doer Doer
	jar  *cookieStore
	log  *slog.Logger
}

func newMobileClient(doer Doer, log *slog.Logger) *mobileClient {
	if doer == nil {
		doer = &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	if log == nil {
		log = slog.Default()
	}

	jar := newCookieStore()
	jar.set(communityHost,
		&http.Cookie{Name: "mobileClientVersion", Value: "0 (2.1.3)", Path: "/"},
		&http.Cookie{Name: "mobileClient", Value: "android", Path: "/"},
		&http.Cookie{Name: "Steam_Language", Value: "english", Path: "/"},
	)

	return &mobileClient{doer: doer, jar: jar, log: log}
}

// do executes one request. form goes into the query string for GET and
// into an url-encoded body otherwise. The returned body is fully read
// and the response closed. Jar writes happen only after the request
// succeeded.
func (c *mobileClient) do(ctx context.Context, method, rawURL string, form url.Values, headers http.Header) (*http.Response, []byte, error) {
	var body io.Reader
	if form != nil {
		if method == http.MethodGet || method == http.MethodHead {
			sep := "?"
			if strings.Contains(rawURL, "?") {
				sep = "&"
			}
			rawURL += sep + form.Encode()
		} else {
			body = strings.NewReader(form.Encode())
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, nil, transientf("build request", err)
	}

	req.Header.Set("User-Agent", userAgentValue)
	req.Header.Set("Accept", acceptValue)
	req.Header.Set("Referer", mobileReferer)
	req.Header.Set("X-Requested-With", xRequestedWithValue)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	for k, vs := range headers {
		req.Header[k] = vs
	}

	if cookies := c.jar.header(req.URL.Hostname()); cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	c.log.Debug("steam request", "method", method, "url", req.URL.Redacted())

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, nil, transientf(method+" "+rawURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, transientf("read response body", err)
	}

	c.jar.capture(req.URL, resp.Cookies())
	c.log.Debug("steam response", "url", req.URL.Redacted(), "status", resp.StatusCode)

	return resp, respBody, nil
}

// request executes and insists on a 200.
func (c *mobileClient) request(ctx context.Context, method, rawURL string, form url.Values, headers http.Header) ([]byte, error) {
	resp, body, err := c.do(ctx, method, rawURL, form, headers)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, transientf(method+" "+rawURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return body, nil
}

func (c *mobileClient) postForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	return c.request(ctx, http.MethodPost, rawURL, form, nil)
}

func (c *mobileClient) postFormJSON(ctx context.Context, rawURL string, form url.Values, out any) error {
	body, err := c.postForm(ctx, rawURL, form)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return transientf("decode "+rawURL, err)
	}
	return nil
}

func (c *mobileClient) getJSON(ctx context.Context, rawURL string, form url.Values, out any) error {
	body, err := c.request(ctx, http.MethodGet, rawURL, form, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return transientf("decode "+rawURL, err)
	}
	return nil
}

// sessionExpired probes session health against the store account page
// with redirects disabled. A redirect to the mobile app's lost-auth
// sentinel or under the login path means the session is gone.
func (c *mobileClient) sessionExpired(ctx context.Context) (bool, error) {
	resp, _, err := c.do(ctx, http.MethodHead, accountProbeURL, nil, nil)
	if err != nil {
		return false, err
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return false, nil
	}

	target, err := url.Parse(location)
	if err != nil {
		return false, transientf("parse redirect target", err)
	}
	return target.Host == lostAuthHost || strings.HasPrefix(target.Path, "/login"), nil
}
