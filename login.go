/**
  Steam Library For Go
  Copyright (C) 2016 Ahmed Samy <f.fallen45@gmail.com>
  Copyright (C) 2016 Mark Samman <mark.samman@gmail.com>

  This library is free software; you can redistribute it and/or
  modify it under the terms of the GNU Lesser General Public
  License as published by the Free Software Foundation; either
  version 2.1 of the License, or (at your option) any later version.

  This library is distributed in the hope that it will be useful,
  but WITHOUT ANY WARRANTY; without even the implied warranty of
  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
  Lesser General Public License for more details.

  You should have received a copy of the GNU Lesser General Public
  License along with this library; if not, write to the Free Software
  Foundation, Inc., 51 Franklin St, Fifth Floor, Boston, MA  02110-1301  USA
*/
package steam

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"strconv"
	"strings"
)

// Canonical phrase Steam embeds in the refusal message for wrong
// credentials.
const incorrectCredentialsPhrase = "password that you have entered is incorrect"

// LoginCaptcha carries a solved captcha for a retried login attempt.
// The GID comes from a previous *CaptchaError.
type LoginCaptcha struct {
	GID  string
	Text string
}

type rsaKeyResponse struct {
	Success   bool   `json:"success"`
	Modulus   string `json:"publickey_mod"`
	Exponent  string `json:"publickey_exp"`
	Timestamp string `json:"timestamp"`
}

type oauthData struct {
	SteamID       SteamID `json:"steamid,string"`
	AccountName   string  `json:"account_name"`
	Token         string  `json:"oauth_token"`
	WGToken       string  `json:"wgtoken"`
	WGTokenSecure string  `json:"wgtoken_secure"`
	WebCookie     string  `json:"webcookie"`
}

type doLoginResponse struct {
	Success           bool       `json:"success"`
	LoginComplete     bool       `json:"login_complete"`
	RequiresTwoFactor bool       `json:"requires_twofactor"`
	Message           string     `json:"message"`
	CaptchaNeeded     bool       `json:"captcha_needed"`
	CaptchaGID        flexString `json:"captcha_gid"`
	EmailAuthNeeded   bool       `json:"emailauth_needed"`
	EmailSteamID      flexString `json:"emailsteamid"`
	OAuthInfo         string     `json:"oauth"`
}

// flexString tolerates fields Steam serializes either as a JSON string
// or a bare number, captcha_gid being the usual offender.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

// login runs one full handshake attempt. Every failure it returns is
// already classified: *TransientError for network and malformed-body
// trouble, everything else permanent.
func login(ctx context.Context, client *mobileClient, clock *AlignedClock, identity Identity, captcha *LoginCaptcha, log *slog.Logger) (*Session, error) {
	// Anonymous fetch of the mobile login page seeds the sessionid
	// cookie the rest of the handshake has to echo back.
	if _, err := client.request(ctx, "GET", mobileReferer, nil, nil); err != nil {
		return nil, err
	}
	sessionID := client.jar.get(communityHost, "sessionid")
	if sessionID == "" {
		return nil, transientf("login", fmt.Errorf("no sessionid cookie issued"))
	}

	if err := clock.Align(ctx); err != nil {
		return nil, err
	}
	donotcache := strconv.FormatInt(clock.Now()*1000, 10)

	var rsaResp rsaKeyResponse
	err := client.postFormJSON(ctx, loginGetRSAKeyURL, url.Values{
		"username":   {identity.Username},
		"donotcache": {donotcache},
	}, &rsaResp)
	if err != nil {
		return nil, err
	}
	if !rsaResp.Success {
		return nil, &LoginFailure{Message: "rsa key request refused for account " + identity.Username}
	}

	encryptedPassword, err := encryptPassword(identity.Password, rsaResp.Modulus, rsaResp.Exponent)
	if err != nil {
		return nil, err
	}

	var twoFactorCode string
	if identity.SharedSecret != "" {
		twoFactorCode, err = GenerateTwoFactorCodeForTime(identity.SharedSecret, clock.Now())
		if err != nil {
			return nil, fmt.Errorf("decode shared secret: %w", err)
		}
	}

	captchaGID, captchaText := "-1", ""
	if captcha != nil {
		captchaGID, captchaText = captcha.GID, captcha.Text
	}

	body, err := client.postForm(ctx, loginDoURL, url.Values{
		"donotcache":        {donotcache},
		"username":          {identity.Username},
		"password":          {encryptedPassword},
		"twofactorcode":     {twoFactorCode},
		"captchagid":        {captchaGID},
		"captcha_text":      {captchaText},
		"emailauth":         {""},
		"emailsteamid":      {""},
		"rsatimestamp":      {rsaResp.Timestamp},
		"remember_login":    {"true"},
		"oauth_client_id":   {oauthClientID},
		"oauth_scope":       {oauthScope},
		"loginfriendlyname": {"#login_emailauth_friendlyname_mobile"},
	})
	if err != nil {
		return nil, err
	}

	var resp doLoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, transientf("decode dologin response", err)
	}

	switch {
	case resp.CaptchaNeeded:
		return nil, &CaptchaError{GID: string(resp.CaptchaGID)}
	case strings.Contains(resp.Message, incorrectCredentialsPhrase):
		return nil, ErrIncorrectCredentials
	case !resp.Success:
		return nil, &LoginFailure{Message: resp.Message, Body: string(body)}
	case resp.OAuthInfo == "":
		return nil, &LoginFailure{Message: "login response carries no oauth block", Body: string(body)}
	}

	var oauth oauthData
	if err := json.Unmarshal([]byte(resp.OAuthInfo), &oauth); err != nil {
		return nil, transientf("decode oauth block", err)
	}

	log.Info("steam login complete", "account", identity.Username, "steamid", oauth.SteamID.ToString())

	session := newSession(client, clock, identity, log, SessionData{
		SteamID:     oauth.SteamID,
		SessionID:   sessionID,
		OAuthToken:  oauth.Token,
		Token:       oauth.WGToken,
		TokenSecure: oauth.WGTokenSecure,
	})
	session.installCookies()
	return session, nil
}

// encryptPassword applies PKCS#1 v1.5 using the modulus and exponent
// from getrsakey, both hex encoded, and returns base64 ciphertext.
func encryptPassword(password, modHex, expHex string) (string, error) {
	modBytes, err := hex.DecodeString(modHex)
	if err != nil {
		return "", transientf("decode rsa modulus", err)
	}
	expBytes, err := hex.DecodeString(expHex)
	if err != nil {
		return "", transientf("decode rsa exponent", err)
	}

	pub := &rsa.PublicKey{
		N: new(big.Int).SetBytes(modBytes),
		E: int(new(big.Int).SetBytes(expBytes).Int64()),
	}

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(password))
	if err != nil {
		return "", transientf("encrypt password", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
