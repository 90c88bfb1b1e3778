package steam

import (
	"errors"
	"fmt"
)

var (
	// ErrIncorrectCredentials is returned by Login when Steam rejects
	// the account name or password. Never retried.
	ErrIncorrectCredentials = errors.New("steam: account name or password is incorrect")

	// ErrSessionExpired is surfaced by the session guard when Steam
	// redirects an authenticated request to the login page. The caller
	// decides whether to run a fresh Login or Session.Refresh.
	ErrSessionExpired = errors.New("steam: session expired")

	// ErrNoMobileSecrets is returned by ConfirmationClient when the
	// identity carries no shared or identity secret.
	ErrNoMobileSecrets = errors.New("steam: identity has no mobile confirmation secrets")

	// ErrAuthenticatorSpent is returned by Login on second and later
	// calls. One Authenticator value drives at most one handshake.
	ErrAuthenticatorSpent = errors.New("steam: authenticator already consumed by a login attempt")

	ErrAuthenticatorPresent = errors.New("steam: an authenticator is already attached to this account")
	ErrBadSMSCode           = errors.New("steam: sms activation code rejected")
	ErrBadPhoneNumber       = errors.New("steam: phone number must look like +5511976914922")
	ErrPhoneNotRegistered   = errors.New("steam: phone number still not attached to the account")
)

// CaptchaError reports that Steam demands a captcha transcription
// before it will process another login attempt. GID identifies the
// captcha image to fetch and solve.
type CaptchaError struct {
	GID string
}

func (e *CaptchaError) Error() string {
	return fmt.Sprintf("steam: captcha required, gid %s", e.GID)
}

// LoginFailure is a well-formed refusal from the login endpoint that
// is neither a captcha demand nor bad credentials. It is permanent:
// the retry policy surfaces it untouched.
type LoginFailure struct {
	Message string
	Body    string
}

func (e *LoginFailure) Error() string {
	if e.Message != "" {
		return "steam: login failed: " + e.Message
	}
	return "steam: login failed: " + e.Body
}

// TransientError wraps a network-level or malformed-response failure.
// The login retry policy treats these, and only these, as retryable.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("steam: %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func transientf(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

func isTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// LinkerError reports a failure in the authenticator enrollment flow.
// Enrollment failures are never retried automatically: blind retries
// on SMS codes or one-time material risk locking the account.
type LinkerError struct {
	Message string
	Err     error
}

func (e *LinkerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("steam: enrollment: %s: %v", e.Message, e.Err)
	}
	return "steam: enrollment: " + e.Message
}

func (e *LinkerError) Unwrap() error { return e.Err }
