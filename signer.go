package steam

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"net/url"
	"strconv"
)

// Confirmation request tags. The signature must be produced with the
// tag of the operation it authorizes.
const (
	tagList    = "conf"
	tagDetails = "details"
	tagAccept  = "allow"
	tagCancel  = "cancel"
)

// Steam truncates longer tags server-side, so the signature has to
// cover at most this many tag bytes.
const maxTagLen = 32

// confirmationHash signs a confirmation request: HMAC-SHA1 keyed with
// the identity secret over the 8-byte big-endian time followed by the
// tag bytes, base64 encoded. Deterministic in (secret, tag, t).
func confirmationHash(identitySecret, tag string, t int64) (string, error) {
	key, err := base64.StdEncoding.DecodeString(identitySecret)
	if err != nil {
		return "", err
	}

	if len(tag) > maxTagLen {
		tag = tag[:maxTagLen]
	}

	data := make([]byte, 8, 8+len(tag))
	binary.BigEndian.PutUint64(data, uint64(t))
	data = append(data, tag...)

	mac := hmac.New(sha1.New, key)
	mac.Write(data)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// confirmationParams builds the signed query parameter set every
// mobileconf endpoint expects.
func confirmationParams(identitySecret, deviceID, tag string, steamID SteamID, t int64) (url.Values, error) {
	hash, err := confirmationHash(identitySecret, tag, t)
	if err != nil {
		return nil, err
	}

	return url.Values{
		"p":   {deviceID},
		"a":   {steamID.ToString()},
		"k":   {hash},
		"t":   {strconv.FormatInt(t, 10)},
		"m":   {"android"},
		"tag": {tag},
	}, nil
}
