package steam

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/sethvargo/go-retry"
)

type config struct {
	doer    Doer
	log     *slog.Logger
	captcha *LoginCaptcha
	backoff func() retry.Backoff
}

// Option configures an Authenticator or a resumed Session.
type Option func(*config)

// WithLogger routes the library's structured logs to l instead of
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTransport substitutes the HTTP transport, for proxying or tests.
// The transport must not follow redirects on its own, the session
// guard reads redirect targets.
func WithTransport(d Doer) Option {
	return func(c *config) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithCaptcha attaches a solved captcha to the next login attempt.
func WithCaptcha(gid, text string) Option {
	return func(c *config) {
		c.captcha = &LoginCaptcha{GID: gid, Text: text}
	}
}

// WithLoginBackoff overrides the retry schedule used around the login
// handshake. The factory is invoked once per Login call.
func WithLoginBackoff(factory func() retry.Backoff) Option {
	return func(c *config) {
		if factory != nil {
			c.backoff = factory
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		log:     slog.Default(),
		backoff: defaultLoginBackoff,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Authenticator is the unauthenticated state: it holds an Identity and
// can run the login handshake exactly once. A successful Login hands
// ownership of the transport, clock and cookie store to the returned
// Session; to retry a whole flow after a permanent failure, build a
// fresh Authenticator.
type Authenticator struct {
	identity Identity
	cfg      *config
	client   *mobileClient
	clock    *AlignedClock
	spent    atomic.Bool
}

// New builds an unauthenticated Authenticator. No network activity.
func New(identity Identity, opts ...Option) *Authenticator {
	cfg := applyOptions(opts)
	client := newMobileClient(cfg.doer, cfg.log)
	return &Authenticator{
		identity: identity,
		cfg:      cfg,
		client:   client,
		clock:    newAlignedClock(client),
	}
}

// Login drives the handshake under the retry policy and consumes the
// authenticator: second and later calls fail with
// ErrAuthenticatorSpent regardless of the first outcome.
//
// Transient failures are retried with capped exponential backoff;
// captcha demands, bad credentials and well-formed refusals abort
// immediately and surface unmodified. After login the Web API key is
// fetched best-effort; a failure there only leaves APIKey empty.
func (a *Authenticator) Login(ctx context.Context) (*Session, error) {
	if !a.spent.CompareAndSwap(false, true) {
		return nil, ErrAuthenticatorSpent
	}

	var session *Session
	err := retry.Do(ctx, a.cfg.backoff(), func(ctx context.Context) error {
		s, err := login(ctx, a.client, a.clock, a.identity, a.cfg.captcha, a.cfg.log)
		if err != nil {
			if isTransient(err) {
				a.cfg.log.Warn("steam login attempt failed, retrying", "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := session.FetchAPIKey(ctx); err != nil {
		a.cfg.log.Debug("api key not cached", "error", err)
	}

	return session, nil
}
