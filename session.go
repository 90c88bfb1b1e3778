package steam

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// SessionData is the cacheable outcome of a successful login. It is
// enough to resume an authenticated session later without re-running
// the handshake, provided Steam still honors the tokens.
type SessionData struct {
	SteamID     SteamID
	SessionID   string
	OAuthToken  string
	Token       string
	TokenSecure string
	APIKey      string
}

// Session is the authenticated state. It owns the session cache and
// the cookie store; all methods are safe for concurrent use. A Session
// only ever comes out of Authenticator.Login or ResumeSession.
type Session struct {
	client   *mobileClient
	clock    *AlignedClock
	identity Identity
	log      *slog.Logger

	mu   sync.RWMutex
	data SessionData
}

func newSession(client *mobileClient, clock *AlignedClock, identity Identity, log *slog.Logger, data SessionData) *Session {
	return &Session{
		client:   client,
		clock:    clock,
		identity: identity,
		log:      log,
		data:     data,
	}
}

// ResumeSession rebuilds a Session from previously persisted
// SessionData, installing the session cookies for every Steam domain.
// No network activity; the first guarded call discovers whether the
// tokens are still alive.
func ResumeSession(identity Identity, data SessionData, opts ...Option) *Session {
	cfg := applyOptions(opts)
	client := newMobileClient(cfg.doer, cfg.log)
	s := newSession(client, newAlignedClock(client), identity, cfg.log, data)
	s.installCookies()
	return s
}

// SteamID returns the numeric account identifier.
func (s *Session) SteamID() SteamID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.SteamID
}

// APIKey returns the cached Web API key, or "" when none was cached.
// No network call.
func (s *Session) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.APIKey
}

// Data snapshots the session cache for persistence.
func (s *Session) Data() SessionData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// installCookies projects the session tokens into a domain-scoped
// cookie set for each Steam host the client acts on. One logical
// session, three independent per-domain copies.
func (s *Session) installCookies() {
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()

	steamID := data.SteamID.ToString()
	_, tzOffset := time.Now().Zone()
	for _, host := range []string{communityHost, storeHost, helpHost} {
		s.client.jar.set(host,
			&http.Cookie{Name: "sessionid", Value: data.SessionID, Path: "/"},
			&http.Cookie{Name: "steamLogin", Value: steamID + "%7C%7C" + data.Token, Path: "/", HttpOnly: true},
			&http.Cookie{Name: "steamLoginSecure", Value: steamID + "%7C%7C" + data.TokenSecure, Path: "/", Secure: true, HttpOnly: true},
			&http.Cookie{Name: "timezoneOffset", Value: strconv.Itoa(tzOffset) + ",0", Path: "/"},
		)
	}
}

// ensureValid probes session health before an authenticated request.
// Expiry is surfaced as ErrSessionExpired and never repaired silently;
// re-login or Refresh is the caller's call.
func (s *Session) ensureValid(ctx context.Context) error {
	expired, err := s.client.sessionExpired(ctx)
	if err != nil {
		return err
	}
	if expired {
		s.log.Warn("steam session expired", "steamid", s.SteamID().ToString())
		return ErrSessionExpired
	}
	return nil
}

// Do issues a custom authenticated request to any Steam endpoint. The
// session guard runs first and domain cookies are attached; the
// response body is returned fully read.
func (s *Session) Do(ctx context.Context, method, rawURL string, form url.Values, headers http.Header) (*http.Response, []byte, error) {
	if err := s.ensureValid(ctx); err != nil {
		return nil, nil, err
	}
	return s.client.do(ctx, method, rawURL, form, headers)
}

// Refresh re-derives the session token cookies from the long-lived
// OAuth token via IMobileAuthService/GetWGToken. It is the cheap
// answer to ErrSessionExpired when the OAuth token itself still holds.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.RLock()
	oauthToken := s.data.OAuthToken
	s.mu.RUnlock()
	if oauthToken == "" {
		return fmt.Errorf("steam: no oauth token to refresh with")
	}

	var response struct {
		Inner struct {
			Token       string `json:"token"`
			TokenSecure string `json:"token_secure"`
		} `json:"response"`
	}
	err := s.client.postFormJSON(ctx, getWGTokenURL, url.Values{"access_token": {oauthToken}}, &response)
	if err != nil {
		return err
	}
	if response.Inner.Token == "" {
		return fmt.Errorf("steam: token refresh rejected")
	}

	s.mu.Lock()
	s.data.Token = response.Inner.Token
	s.data.TokenSecure = response.Inner.TokenSecure
	s.mu.Unlock()

	s.installCookies()
	s.log.Info("steam session refreshed", "steamid", s.SteamID().ToString())
	return nil
}

// ConfirmationClient exposes confirmation signing operations. It fails
// fast with ErrNoMobileSecrets when the identity cannot sign.
func (s *Session) ConfirmationClient() (*ConfirmationClient, error) {
	if !s.identity.HasMobileSecrets() {
		return nil, ErrNoMobileSecrets
	}
	return &ConfirmationClient{session: s}, nil
}

func (s *Session) setAPIKey(key string) {
	s.mu.Lock()
	s.data.APIKey = key
	s.mu.Unlock()
}
