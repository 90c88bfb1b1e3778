package steam

import (
	"crypto/md5"
	"fmt"

	"github.com/google/uuid"
)

// Identity holds the long-lived per-account secrets. It is immutable:
// construct one per account and hand it to New. The shared secret and
// identity secret are the base64 values from the account's maFile;
// both must be present for confirmation operations.
type Identity struct {
	Username       string
	Password       string
	SharedSecret   string
	IdentitySecret string
	DeviceID       string
}

// HasMobileSecrets reports whether this identity can sign mobile
// confirmations.
func (id Identity) HasMobileSecrets() bool {
	return id.SharedSecret != "" && id.IdentitySecret != ""
}

// deviceID returns the configured device id, deriving one from the
// shared secret when unset. The derivation matches the one the mobile
// app uses, so it is stable for a given account.
func (id Identity) deviceID() string {
	if id.DeviceID != "" {
		return id.DeviceID
	}
	if id.SharedSecret == "" {
		return ""
	}
	sum := md5.Sum([]byte(id.SharedSecret))
	return fmt.Sprintf("android:%x-%x-%x-%x-%x",
		sum[:2], sum[2:4], sum[4:6], sum[6:8], sum[8:10])
}

// GenerateDeviceID produces a fresh random device id for enrolling a
// new authenticator. Generate it once per enrollment and persist it
// with the maFile.
func GenerateDeviceID() string {
	return "android:" + uuid.NewString()
}

// MobileAuthFile is the secret bundle Steam returns when an
// authenticator is attached to an account ("maFile"). Save it before
// finalizing enrollment; the revocation code inside is the only way
// back into the account if anything goes wrong.
type MobileAuthFile struct {
	SharedSecret   string `json:"shared_secret"`
	SerialNumber   string `json:"serial_number"`
	RevocationCode string `json:"revocation_code"`
	URI            string `json:"uri"`
	ServerTime     int64  `json:"server_time,string"`
	AccountName    string `json:"account_name"`
	TokenGID       string `json:"token_gid"`
	IdentitySecret string `json:"identity_secret"`
	Secret1        string `json:"secret_1"`
	Status         int32  `json:"status"`
	DeviceID       string `json:"device_id"`
	FullyEnrolled  bool   `json:"fully_enrolled"`
}

// Identity builds an Identity from the bundle. The password is not
// part of the maFile and must be supplied by the caller.
func (f *MobileAuthFile) Identity(password string) Identity {
	return Identity{
		Username:       f.AccountName,
		Password:       password,
		SharedSecret:   f.SharedSecret,
		IdentitySecret: f.IdentitySecret,
		DeviceID:       f.DeviceID,
	}
}
