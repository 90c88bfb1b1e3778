package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

// AddAuthenticatorStep tracks the multi-turn enrollment dialogue.
type AddAuthenticatorStep int

const (
	// StepInitial starts enrollment; requires a verified email on the
	// account.
	StepInitial AddAuthenticatorStep = iota
	// StepEmailConfirmation is returned after a phone number was
	// submitted; resume here once the confirmation email is clicked.
	StepEmailConfirmation
	// StepMobileAuth means the authenticator is attached and the
	// maFile has been handed out. Save it, then finalize.
	StepMobileAuth
)

// RemoveAuthenticatorScheme selects what the account falls back to.
type RemoveAuthenticatorScheme int

const (
	RemoveCompletely   RemoveAuthenticatorScheme = 1
	ReturnToEmailCodes RemoveAuthenticatorScheme = 2
)

// Steam needs a few seconds to propagate a phone registration before
// dependent calls observe it.
var phoneCatchupDelay = 5 * time.Second

var phoneNumberPattern = regexp.MustCompile(`^\+[0-9]{8,15}$`)

const finalizeCodeRetries = 30

// AddAuthenticator advances the enrollment dialogue by one step.
//
// Call with StepInitial first. When the account has no phone the given
// number is attached and StepEmailConfirmation comes back: click the
// confirmation email, then call again with StepEmailConfirmation. The
// returned maFile on StepMobileAuth must be persisted before
// FinalizeAuthenticator, losing it means losing the account.
func (s *Session) AddAuthenticator(ctx context.Context, step AddAuthenticatorStep, phoneNumber string) (AddAuthenticatorStep, *MobileAuthFile, error) {
	if err := s.ensureValid(ctx); err != nil {
		return step, nil, err
	}

	hasPhone, err := s.hasPhoneAttached(ctx)
	if err != nil {
		return step, nil, err
	}
	s.log.Debug("phone registration state", "has_phone", hasPhone)

	if !hasPhone && step == StepInitial {
		if !phoneNumberPattern.MatchString(phoneNumber) {
			return step, nil, ErrBadPhoneNumber
		}
		if err := s.addPhoneNumber(ctx, phoneNumber); err != nil {
			return step, nil, err
		}
		if err := sleepCtx(ctx, phoneCatchupDelay); err != nil {
			return step, nil, err
		}
		return StepEmailConfirmation, nil, nil
	}

	// Signaling email confirmation with a phone already on the account
	// breaks finalization, so skip it in that case.
	if !hasPhone {
		if err := s.checkEmailConfirmation(ctx); err != nil {
			return step, nil, err
		}
	}

	file, err := s.attachAuthenticator(ctx)
	if err != nil {
		return step, nil, err
	}
	return StepMobileAuth, file, nil
}

// FinalizeAuthenticator validates the SMS code and flips SteamGuard on.
// Only call after the maFile is saved.
//
// The phone registration must be visible server-side by the end of the
// fixed catch-up delay; one re-check decides, there is no polling.
func (s *Session) FinalizeAuthenticator(ctx context.Context, file *MobileAuthFile, smsCode string) error {
	if err := s.ensureValid(ctx); err != nil {
		return err
	}

	if err := s.checkSMSCode(ctx, smsCode); err != nil {
		return err
	}
	if err := sleepCtx(ctx, phoneCatchupDelay); err != nil {
		return err
	}

	hasPhone, err := s.hasPhoneAttached(ctx)
	if err != nil {
		return err
	}
	if !hasPhone {
		return &LinkerError{Message: "phone number not visible after sms check", Err: ErrPhoneNotRegistered}
	}

	form := url.Values{
		"steamid":         {s.SteamID().ToString()},
		"access_token":    {s.Data().OAuthToken},
		"activation_code": {smsCode},
	}

	if err := s.clock.Align(ctx); err != nil {
		return err
	}

	var smsCodeGood bool
	for tries := 0; tries <= finalizeCodeRetries; tries++ {
		var guardCode string
		if tries != 0 {
			guardCode, err = GenerateTwoFactorCodeForTime(file.SharedSecret, s.clock.Now())
			if err != nil {
				return &LinkerError{Message: "generate guard code", Err: err}
			}
		}
		form.Set("authenticator_code", guardCode)
		form.Set("authenticator_time", strconv.FormatInt(s.clock.Now(), 10))
		if smsCodeGood {
			form.Set("activation_code", "")
		}

		var response struct {
			Inner *struct {
				Status   int32 `json:"status"`
				WantMore bool  `json:"want_more"`
				Success  bool  `json:"success"`
			} `json:"response"`
		}
		if err := s.client.postFormJSON(ctx, finalizeAuthenticatorURL, form, &response); err != nil {
			return err
		}
		if response.Inner == nil {
			return &LinkerError{Message: "empty finalize response"}
		}

		switch {
		case response.Inner.Status == 89:
			return ErrBadSMSCode
		case response.Inner.Status == 88 && tries >= finalizeCodeRetries:
			return &LinkerError{Message: "unable to generate a code steam accepts"}
		case response.Inner.Status == 88:
			continue
		case !response.Inner.Success:
			return &LinkerError{Message: "finalize rejected, status " + strconv.Itoa(int(response.Inner.Status))}
		case response.Inner.WantMore:
			smsCodeGood = true
			continue
		}

		file.FullyEnrolled = true
		s.log.Info("authenticator finalized", "steamid", s.SteamID().ToString())
		return nil
	}

	return &LinkerError{Message: fmt.Sprintf("finalize did not converge in %d tries", finalizeCodeRetries)}
}

// RemoveAuthenticator detaches the mobile authenticator, either
// reverting to email codes or removing SteamGuard completely.
func (s *Session) RemoveAuthenticator(ctx context.Context, revocationCode string, scheme RemoveAuthenticatorScheme) error {
	if err := s.ensureValid(ctx); err != nil {
		return err
	}

	var response struct {
		Inner *struct {
			Success bool `json:"success"`
		} `json:"response"`
	}
	err := s.client.postFormJSON(ctx, removeAuthenticatorURL, url.Values{
		"steamid":           {s.SteamID().ToString()},
		"access_token":      {s.Data().OAuthToken},
		"revocation_code":   {revocationCode},
		"steamguard_scheme": {strconv.Itoa(int(scheme))},
	}, &response)
	if err != nil {
		return err
	}
	if response.Inner == nil || !response.Inner.Success {
		return &LinkerError{Message: "remove authenticator rejected"}
	}
	return nil
}

func (s *Session) attachAuthenticator(ctx context.Context) (*MobileAuthFile, error) {
	deviceID := s.identity.deviceID()
	if deviceID == "" {
		deviceID = GenerateDeviceID()
	}

	body, err := s.client.postForm(ctx, addAuthenticatorURL, url.Values{
		"access_token":       {s.Data().OAuthToken},
		"steamid":            {s.SteamID().ToString()},
		"authenticator_type": {"1"}, /* 1 = Valve's, 2 = thirdparty */
		"device_identifier":  {deviceID},
		"sms_phone_id":       {"1"},
	})
	if err != nil {
		return nil, err
	}

	var response struct {
		Inner *MobileAuthFile `json:"response"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, transientf("decode add authenticator response", err)
	}
	if response.Inner == nil {
		return nil, &LinkerError{Message: "empty add authenticator response"}
	}
	if response.Inner.Status == 29 {
		return nil, ErrAuthenticatorPresent
	}
	if response.Inner.Status != 1 {
		return nil, &LinkerError{Message: "add authenticator status " + strconv.Itoa(int(response.Inner.Status))}
	}

	response.Inner.DeviceID = deviceID
	return response.Inner, nil
}

func (s *Session) phoneAjax(ctx context.Context, op, arg string, extra url.Values) ([]byte, error) {
	form := url.Values{
		"op":        {op},
		"arg":       {arg},
		"sessionid": {s.Data().SessionID},
	}
	for k, vs := range extra {
		form[k] = vs
	}
	return s.client.postForm(ctx, phoneAjaxURL, form)
}

func (s *Session) hasPhoneAttached(ctx context.Context) (bool, error) {
	body, err := s.phoneAjax(ctx, "has_phone", "null", nil)
	if err != nil {
		return false, err
	}
	var response struct {
		HasPhone bool `json:"has_phone"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return false, transientf("decode has_phone response", err)
	}
	return response.HasPhone, nil
}

func (s *Session) addPhoneNumber(ctx context.Context, phoneNumber string) error {
	body, err := s.phoneAjax(ctx, "add_phone_number", phoneNumber, nil)
	if err != nil {
		return err
	}
	var response struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return transientf("decode add_phone_number response", err)
	}
	if !response.Success {
		return &LinkerError{Message: "steam refused the phone number"}
	}
	return nil
}

func (s *Session) checkEmailConfirmation(ctx context.Context) error {
	body, err := s.phoneAjax(ctx, "email_confirmation", "", nil)
	if err != nil {
		return err
	}
	var response struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return transientf("decode email_confirmation response", err)
	}
	if !response.Success {
		return &LinkerError{Message: "email confirmation signal rejected"}
	}
	return nil
}

func (s *Session) checkSMSCode(ctx context.Context, smsCode string) error {
	body, err := s.phoneAjax(ctx, "check_sms_code", smsCode, url.Values{
		"checkfortos": {"0"},
		"skipvoip":    {"1"},
	})
	if err != nil {
		return err
	}
	var response struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return transientf("decode check_sms_code response", err)
	}
	if !response.Success {
		return ErrBadSMSCode
	}
	return nil
}

// sleepCtx waits without occupying a worker past cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
