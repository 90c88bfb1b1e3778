package steam

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// scriptedDoer plays back a fixed sequence of responses and records
// every request it saw.
type scriptedDoer struct {
	t *testing.T

	mu       sync.Mutex
	handlers []func(*http.Request) (*http.Response, error)
	requests []*http.Request
	bodies   []url.Values
}

func newScriptedDoer(t *testing.T, handlers ...func(*http.Request) (*http.Response, error)) *scriptedDoer {
	return &scriptedDoer{t: t, handlers: handlers}
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var form url.Values
	if req.Body != nil {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			d.t.Fatalf("read request body: %v", err)
		}
		form, err = url.ParseQuery(string(raw))
		if err != nil {
			d.t.Fatalf("parse request body: %v", err)
		}
	}
	d.requests = append(d.requests, req)
	d.bodies = append(d.bodies, form)

	if len(d.handlers) == 0 {
		d.t.Fatalf("unexpected request: %s %s", req.Method, req.URL)
	}
	handler := d.handlers[0]
	d.handlers = d.handlers[1:]
	return handler(req)
}

func (d *scriptedDoer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

func respond(status int, body string, header http.Header) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		if header == nil {
			header = http.Header{}
		}
		return &http.Response{
			StatusCode: status,
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	}
}

func respondJSON(body string) func(*http.Request) (*http.Response, error) {
	return respond(http.StatusOK, body, nil)
}

func failNetwork(err error) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return nil, err
	}
}

func setCookie(name, value string) http.Header {
	h := http.Header{}
	h.Add("Set-Cookie", name+"="+value+"; Path=/")
	return h
}

func redirectTo(location string) http.Header {
	h := http.Header{}
	h.Set("Location", location)
	return h
}
