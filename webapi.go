package steam

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
)

const accessDeniedPattern = "<h2>Access Denied</h2>"

var (
	keyRegExp          = regexp.MustCompile("<p>Key: ([0-9A-F]+)</p>")
	accessDeniedRegExp = regexp.MustCompile(accessDeniedPattern)

	ErrCannotRegisterKey = errors.New("steam: unable to register API key")
	ErrCannotRevokeKey   = errors.New("steam: unable to revoke API key")
	ErrAccessDenied      = errors.New("steam: access is denied")
	ErrKeyNotFound       = errors.New("steam: key not found")
)

// FetchAPIKey scrapes the account's Web API key from the developer
// page and caches it on the session. Accounts with limited status get
// ErrAccessDenied; accounts that never registered a key get
// ErrKeyNotFound.
func (s *Session) FetchAPIKey(ctx context.Context) (string, error) {
	body, err := s.client.request(ctx, http.MethodGet, apiKeyURL, nil, nil)
	if err != nil {
		return "", err
	}

	if accessDeniedRegExp.Match(body) {
		return "", ErrAccessDenied
	}

	submatch := keyRegExp.FindStringSubmatch(string(body))
	if len(submatch) <= 1 {
		return "", ErrKeyNotFound
	}

	s.setAPIKey(submatch[1])
	return submatch[1], nil
}

// RegisterAPIKey requests a new Web API key for the given domain.
func (s *Session) RegisterAPIKey(ctx context.Context, domain string) error {
	if err := s.ensureValid(ctx); err != nil {
		return err
	}

	resp, _, err := s.client.do(ctx, http.MethodPost, apiKeyRegisterURL, url.Values{
		"domain":       {domain},
		"agreeToTerms": {"agreed"},
		"sessionid":    {s.Data().SessionID},
		"Submit":       {"Register"},
	}, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return ErrCannotRegisterKey
	}
	return nil
}

// RevokeAPIKey revokes the account's Web API key and drops the cached
// copy.
func (s *Session) RevokeAPIKey(ctx context.Context) error {
	if err := s.ensureValid(ctx); err != nil {
		return err
	}

	resp, _, err := s.client.do(ctx, http.MethodPost, apiKeyRevokeURL, url.Values{
		"revoke":    {"Revoke My Steam Web API Key"},
		"sessionid": {s.Data().SessionID},
	}, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return ErrCannotRevokeKey
	}

	s.setAPIKey("")
	return nil
}
