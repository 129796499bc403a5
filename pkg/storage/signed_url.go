package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidToken is returned for malformed, forged or expired download tokens.
var ErrInvalidToken = errors.New("invalid download token")

// DownloadClaims is the content of a signed download token.
type DownloadClaims struct {
	ExportID  string
	Name      string
	ExpiresAt time.Time
}

// SignedURLSigner issues and verifies HMAC-signed download tokens for stored exports.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer. A non-positive ttl defaults to one day.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a token granting access to the stored file name.
func (s *SignedURLSigner) Generate(exportID, name string) (string, time.Time, error) {
	if exportID == "" || name == "" {
		return "", time.Time{}, fmt.Errorf("export id and file name required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedName := base64.RawURLEncoding.EncodeToString([]byte(name))
	token := strings.Join([]string{exportID, ts, encodedName, s.sign(exportID, ts, encodedName)}, ".")
	return token, expiresAt, nil
}

// Parse verifies a token. allowExpired skips the expiry check.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (DownloadClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return DownloadClaims{}, ErrInvalidToken
	}
	exportID, ts, encodedName, signature := parts[0], parts[1], parts[2], parts[3]
	if !hmac.Equal([]byte(s.sign(exportID, ts, encodedName)), []byte(signature)) {
		return DownloadClaims{}, ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return DownloadClaims{}, ErrInvalidToken
	}
	name, err := base64.RawURLEncoding.DecodeString(encodedName)
	if err != nil {
		return DownloadClaims{}, ErrInvalidToken
	}
	claims := DownloadClaims{ExportID: exportID, Name: string(name), ExpiresAt: time.Unix(expUnix, 0)}
	if !allowExpired && s.now().After(claims.ExpiresAt) {
		return DownloadClaims{}, fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	return claims, nil
}

func (s *SignedURLSigner) sign(exportID, ts, encodedName string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(exportID + "|" + ts + "|" + encodedName))
	return hex.EncodeToString(mac.Sum(nil))
}
