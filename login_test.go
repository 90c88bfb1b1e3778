package steam

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1024-bit modulus, enough for PKCS#1 v1.5 over any password length
// Steam accepts.
const testRSAModulus = "7f96a4fe44001b0c8050941b55e5a0fd6060e94b7046861885657f21d0f9ecaf852972551804ea639f25945ba9de55bbbce1fcc82db846fc7fe4fc98893d736c484e7d1d1b80ed48c9246bf638ea8e2496b998f85b6206a184af72dd897689defbc1a7adc8fbfb4f15456dedcd3ae107cd4366d800e1529132591cbcc470727f"

const (
	rsaKeyBody = `{"success":true,"publickey_mod":"` + testRSAModulus + `","publickey_exp":"010001","timestamp":"98765"}`

	queryTimeBody = `{"response":{"server_time":"1700000000"}}`

	loginSuccessBody = `{"success":true,"login_complete":true,"requires_twofactor":false,"oauth":"{\"steamid\":\"76561198012345678\",\"account_name\":\"tester\",\"oauth_token\":\"oauth-token\",\"wgtoken\":\"wg-token\",\"wgtoken_secure\":\"wg-token-secure\",\"webcookie\":\"web-cookie\"}"}`

	loginBadCredentialsBody = `{"success":false,"message":"The account name or password that you have entered is incorrect."}`

	loginCaptchaBody = `{"success":false,"captcha_needed":true,"captcha_gid":"7327792891513355145"}`
)

func testIdentity() Identity {
	return Identity{
		Username:       "tester",
		Password:       "hunter2",
		SharedSecret:   testSharedSecret,
		IdentitySecret: testIdentitySecret,
	}
}

// testBackoff retries immediately with a hard attempt budget so tests
// never sleep.
func testBackoff(maxRetries uint64) func() retry.Backoff {
	return func() retry.Backoff {
		return retry.WithMaxRetries(maxRetries, retry.BackoffFunc(func() (time.Duration, bool) {
			return 0, false
		}))
	}
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	doer := newScriptedDoer(t,
		respond(200, "", setCookie("sessionid", "testsessionid")), // mobile login page
		respondJSON(queryTimeBody),                                // clock align
		respondJSON(rsaKeyBody),
		respondJSON(loginSuccessBody),
		respondJSON("<p>Key: 0123456789ABCDEF</p>"), // api key scrape
	)

	authenticator := New(testIdentity(), WithTransport(doer), WithLoginBackoff(testBackoff(0)))
	session, err := authenticator.Login(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SteamID(76561198012345678), session.SteamID())
	assert.Equal(t, "0123456789ABCDEF", session.APIKey())

	data := session.Data()
	assert.Equal(t, "testsessionid", data.SessionID)
	assert.Equal(t, "oauth-token", data.OAuthToken)
	assert.Equal(t, "wg-token", data.Token)
	assert.Equal(t, "wg-token-secure", data.TokenSecure)

	// One logical session token, projected per domain.
	for _, host := range []string{communityHost, storeHost, helpHost} {
		assert.Equal(t, "testsessionid", session.client.jar.get(host, "sessionid"), host)
		assert.Equal(t, "76561198012345678%7C%7Cwg-token-secure",
			session.client.jar.get(host, "steamLoginSecure"), host)
		assert.Equal(t, "76561198012345678%7C%7Cwg-token",
			session.client.jar.get(host, "steamLogin"), host)
	}
}

func TestLoginSubmitsExpectedForm(t *testing.T) {
	t.Parallel()

	doer := newScriptedDoer(t,
		respond(200, "", setCookie("sessionid", "testsessionid")),
		respondJSON(queryTimeBody),
		respondJSON(rsaKeyBody),
		respondJSON(loginSuccessBody),
		respondJSON(""),
	)

	_, err := New(testIdentity(), WithTransport(doer), WithLoginBackoff(testBackoff(0))).Login(context.Background())
	require.NoError(t, err)

	form := doer.bodies[3]
	assert.Equal(t, "tester", form.Get("username"))
	assert.NotEmpty(t, form.Get("password"))
	assert.NotEqual(t, "hunter2", form.Get("password"), "password must be encrypted")
	assert.Len(t, form.Get("twofactorcode"), 5)
	assert.Equal(t, "98765", form.Get("rsatimestamp"))
	assert.Equal(t, "-1", form.Get("captchagid"))
	assert.Equal(t, "true", form.Get("remember_login"))
	assert.Equal(t, oauthClientID, form.Get("oauth_client_id"))
	assert.Equal(t, oauthScope, form.Get("oauth_scope"))
}

func TestLoginRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	netErr := errors.New("connection reset")
	doer := newScriptedDoer(t,
		failNetwork(netErr), // attempt 1
		failNetwork(netErr), // attempt 2
		respond(200, "", setCookie("sessionid", "testsessionid")),
		respondJSON(queryTimeBody),
		respondJSON(rsaKeyBody),
		respondJSON(loginSuccessBody),
		respondJSON(""),
	)

	session, err := New(testIdentity(), WithTransport(doer), WithLoginBackoff(testBackoff(5))).Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SteamID(76561198012345678), session.SteamID())
	assert.Equal(t, 7, doer.count())
}

func TestLoginTransientExhaustion(t *testing.T) {
	t.Parallel()

	netErr := errors.New("connection reset")
	doer := newScriptedDoer(t,
		failNetwork(netErr),
		failNetwork(netErr),
		failNetwork(netErr),
	)

	_, err := New(testIdentity(), WithTransport(doer), WithLoginBackoff(testBackoff(2))).Login(context.Background())
	require.Error(t, err)

	var te *TransientError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, 3, doer.count())
}

func TestLoginIncorrectCredentialsNoRetry(t *testing.T) {
	t.Parallel()

	doer := newScriptedDoer(t,
		respond(200, "", setCookie("sessionid", "testsessionid")),
		respondJSON(queryTimeBody),
		respondJSON(rsaKeyBody),
		respondJSON(loginBadCredentialsBody),
	)

	_, err := New(testIdentity(), WithTransport(doer), WithLoginBackoff(testBackoff(5))).Login(context.Background())
	assert.ErrorIs(t, err, ErrIncorrectCredentials)
	assert.Equal(t, 4, doer.count(), "permanent failures must abort with zero retries")
}

func TestLoginCaptchaRequiredNoRetry(t *testing.T) {
	t.Parallel()

	doer := newScriptedDoer(t,
		respond(200, "", setCookie("sessionid", "testsessionid")),
		respondJSON(queryTimeBody),
		respondJSON(rsaKeyBody),
		respondJSON(loginCaptchaBody),
	)

	_, err := New(testIdentity(), WithTransport(doer), WithLoginBackoff(testBackoff(5))).Login(context.Background())

	var captchaErr *CaptchaError
	require.ErrorAs(t, err, &captchaErr)
	assert.Equal(t, "7327792891513355145", captchaErr.GID)
	assert.Equal(t, 4, doer.count())
}

func TestLoginGeneralFailureNoRetry(t *testing.T) {
	t.Parallel()

	doer := newScriptedDoer(t,
		respond(200, "", setCookie("sessionid", "testsessionid")),
		respondJSON(queryTimeBody),
		respondJSON(rsaKeyBody),
		respondJSON(`{"success":false,"message":"There have been too many login failures"}`),
	)

	_, err := New(testIdentity(), WithTransport(doer), WithLoginBackoff(testBackoff(5))).Login(context.Background())

	var failure *LoginFailure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Message, "too many login failures")
	assert.Equal(t, 4, doer.count())
}

func TestLoginConsumesAuthenticator(t *testing.T) {
	t.Parallel()

	doer := newScriptedDoer(t, failNetwork(errors.New("down")))
	authenticator := New(testIdentity(), WithTransport(doer), WithLoginBackoff(testBackoff(0)))

	_, err := authenticator.Login(context.Background())
	require.Error(t, err)

	_, err = authenticator.Login(context.Background())
	assert.ErrorIs(t, err, ErrAuthenticatorSpent)
	assert.Equal(t, 1, doer.count(), "a spent authenticator must not touch the network")
}

func TestEncryptPassword(t *testing.T) {
	t.Parallel()

	first, err := encryptPassword("hunter2", testRSAModulus, "010001")
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	// PKCS#1 v1.5 is randomized.
	second, err := encryptPassword("hunter2", testRSAModulus, "010001")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = encryptPassword("hunter2", "zz-not-hex", "010001")
	assert.Error(t, err)
}
