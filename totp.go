package steam

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
)

// Steam renders codes over this restricted alphabet instead of plain
// digits.
const twoFactorChars = "23456789BCDFGHJKMNPQRTVWXY"

// GenerateTwoFactorCodeForTime computes the 5-character Steam Guard
// code for the given unix time. Pure: the same secret and any two
// times inside one 30-second window yield the same code. The time must
// come from the aligned clock, a drifting device clock produces codes
// Steam rejects.
func GenerateTwoFactorCodeForTime(sharedSecret string, t int64) (string, error) {
	key, err := base64.StdEncoding.DecodeString(sharedSecret)
	if err != nil {
		return "", err
	}

	counter := make([]byte, 8)
	binary.BigEndian.PutUint64(counter, uint64(t/30))

	mac := hmac.New(sha1.New, key)
	mac.Write(counter)
	sum := mac.Sum(nil)

	start := sum[19] & 0x0F
	code := binary.BigEndian.Uint32(sum[start:start+4]) & 0x7FFFFFFF

	buf := make([]byte, 5)
	for i := range buf {
		buf[i] = twoFactorChars[code%uint32(len(twoFactorChars))]
		code /= uint32(len(twoFactorChars))
	}

	return string(buf), nil
}

// GenerateTwoFactorCode computes the current code using server time
// from an aligned clock.
func GenerateTwoFactorCode(sharedSecret string, clock *AlignedClock) (string, error) {
	return GenerateTwoFactorCodeForTime(sharedSecret, clock.Now())
}
