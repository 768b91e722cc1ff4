package identity

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	HeaderScheme = "X-Restate-Signature-Scheme"
	HeaderJWT    = "X-Restate-Jwt-V1"
	SchemeV1     = "v1"
)

var (
	ErrMissingIdentity = errors.New("identity: request is not signed")
	ErrBadScheme       = errors.New("identity: unsupported signature scheme")
	ErrInvalidIdentity = errors.New("identity: invalid request token")
)

// Verifier checks that inbound requests were signed by the runtime. The
// token is an EdDSA JWT whose audience is the request path.
type Verifier struct {
	keys   []ed25519.PublicKey
	leeway time.Duration
}

// NewVerifier returns nil when no keys are given: verification is disabled.
func NewVerifier(keys []string, leeway time.Duration) (*Verifier, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	v := &Verifier{leeway: leeway}
	for i, k := range keys {
		pub, err := ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("identity key %d: %w", i, err)
		}
		v.keys = append(v.keys, pub)
	}
	return v, nil
}

func (v *Verifier) Verify(r *http.Request) error {
	scheme := r.Header.Get(HeaderScheme)
	if scheme == "" {
		return ErrMissingIdentity
	}
	if scheme != SchemeV1 {
		return fmt.Errorf("%w %q", ErrBadScheme, scheme)
	}
	raw := r.Header.Get(HeaderJWT)
	if raw == "" {
		return ErrMissingIdentity
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(r.URL.Path),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	for _, key := range v.keys {
		tok, err := parser.Parse(raw, func(*jwt.Token) (any, error) { return key, nil })
		if err == nil && tok.Valid {
			return nil
		}
	}
	return ErrInvalidIdentity
}
