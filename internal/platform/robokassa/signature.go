package robokassa

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strings"
)

// HashAlgorithm is the digest selected in the merchant's technical settings.
type HashAlgorithm string

const (
	HashMD5    HashAlgorithm = "md5"
	HashSHA256 HashAlgorithm = "sha256"
	HashSHA512 HashAlgorithm = "sha512"
)

func (a HashAlgorithm) new() hash.Hash {
	switch HashAlgorithm(strings.ToLower(string(a))) {
	case HashSHA256:
		return sha256.New()
	case HashSHA512:
		return sha512.New()
	default:
		return md5.New()
	}
}

func digest(alg HashAlgorithm, parts ...string) string {
	h := alg.new()
	h.Write([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(h.Sum(nil))
}

// Sign returns the SignatureValue of an outbound payment link:
// hash("MerchantLogin:OutSum:InvId:Password1").
func Sign(alg HashAlgorithm, merchantLogin, outSum, invID, password1 string) string {
	return digest(alg, merchantLogin, outSum, invID, password1)
}

// SignResult returns the SignatureValue the provider puts on a ResultURL
// callback: hash("OutSum:InvId:Password2").
func SignResult(alg HashAlgorithm, outSum, invID, password2 string) string {
	return digest(alg, outSum, invID, password2)
}

// Verify checks a ResultURL signature. outSum must be the exact string that
// was received; the provider signs its own rendering of the amount.
func Verify(alg HashAlgorithm, outSum, invID, password2, candidate string) bool {
	want := SignResult(alg, outSum, invID, password2)
	got := strings.ToLower(strings.TrimSpace(candidate))
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
