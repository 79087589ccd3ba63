package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnauthorized covers invalid credentials and invalid, expired or
	// malformed tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMissingSignature is returned when the webhook signature header is absent.
	ErrMissingSignature = errors.New("missing webhook signature header")
	// ErrInvalidSignature is returned when the webhook signature does not match the body.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// SignatureHeader carries the base64 HMAC-SHA256 digest of the webhook body.
const SignatureHeader = "X-Shopify-Hmac-Sha256"

// Config holds the process-wide authentication settings, fixed at startup.
type Config struct {
	Secret        string
	WebhookSecret string
	TokenTTL      time.Duration
	BcryptCost    int
}

// Authenticator provides password hashing, token issuance/validation and
// webhook signature verification. All operations are stateless; the
// configuration is read-only after construction.
type Authenticator struct {
	secret        []byte
	webhookSecret []byte
	tokenTTL      time.Duration
	bcryptCost    int
}

func New(cfg Config) *Authenticator {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 60 * time.Minute
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Authenticator{
		secret:        []byte(cfg.Secret),
		webhookSecret: []byte(cfg.WebhookSecret),
		tokenTTL:      ttl,
		bcryptCost:    cost,
	}
}

// HashPassword derives a salted bcrypt hash of the plaintext.
func (a *Authenticator) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), a.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// Malformed hashes and wrong passwords are indistinguishable to the caller.
func (a *Authenticator) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IssueToken signs an HS256 token for the subject with the configured expiry.
func (a *Authenticator) IssueToken(subject string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate verifies the token's signature and expiry and returns the
// subject claim. Any failure, including a missing subject, is ErrUnauthorized.
func (a *Authenticator) Authenticate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}
	if claims.Subject == "" {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}

// VerifyWebhookSignature checks that signature is the base64-encoded
// HMAC-SHA256 digest of body under the shared webhook secret. The comparison
// is constant-time.
func (a *Authenticator) VerifyWebhookSignature(body []byte, signature string) error {
	if signature == "" {
		return ErrMissingSignature
	}

	mac := hmac.New(sha256.New, a.webhookSecret)
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
