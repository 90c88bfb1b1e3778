package steam

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// cookieStore is an in-memory cookie jar indexed by origin domain.
// Lookups are always domain-qualified: a request only ever carries the
// cookies recorded for its own host, never a flattened global view.
// The same logical session token is stored once per Steam domain, each
// copy with independent scope.
type cookieStore struct {
	mu       sync.RWMutex
	byDomain map[string][]*http.Cookie
}

func newCookieStore() *cookieStore {
	return &cookieStore{byDomain: make(map[string][]*http.Cookie)}
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimPrefix(domain, "."))
}

// set records cookies under one domain, replacing any existing cookie
// with the same name.
func (s *cookieStore) set(domain string, cookies ...*http.Cookie) {
	domain = normalizeDomain(domain)

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.byDomain[domain]
	for _, c := range cookies {
		replaced := false
		for i, old := range stored {
			if old.Name == c.Name {
				stored[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			stored = append(stored, c)
		}
	}
	s.byDomain[domain] = stored
}

// capture stores response cookies under the responding host, honoring
// an explicit Domain attribute when the server set one.
func (s *cookieStore) capture(u *url.URL, cookies []*http.Cookie) {
	for _, c := range cookies {
		domain := c.Domain
		if domain == "" {
			domain = u.Hostname()
		}
		if c.MaxAge < 0 {
			s.remove(domain, c.Name)
			continue
		}
		s.set(domain, c)
	}
}

func (s *cookieStore) remove(domain, name string) {
	domain = normalizeDomain(domain)

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.byDomain[domain]
	for i, c := range stored {
		if c.Name == name {
			s.byDomain[domain] = append(stored[:i], stored[i+1:]...)
			return
		}
	}
}

// get returns the value of one cookie, or "" when absent.
func (s *cookieStore) get(domain, name string) string {
	domain = normalizeDomain(domain)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.byDomain[domain] {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// cookies returns a copy of the domain's cookie set.
func (s *cookieStore) cookies(domain string) []*http.Cookie {
	domain = normalizeDomain(domain)

	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.byDomain[domain]
	out := make([]*http.Cookie, len(stored))
	for i, c := range stored {
		clone := *c
		out[i] = &clone
	}
	return out
}

// header renders the domain's cookies as a Cookie header value.
func (s *cookieStore) header(domain string) string {
	domain = normalizeDomain(domain)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var b strings.Builder
	for i, c := range s.byDomain[domain] {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(c.Name)
		b.WriteByte('=')
		b.WriteString(c.Value)
	}
	return b.String()
}
