// Package auth issues and verifies bearer tokens, hashes passwords, and
// resolves the viewer of each HTTP request.
//
// TOKEN FLOW OVERVIEW:
//  1. POST /api/users or /api/users/login succeeds → the service calls Issue
//  2. The client sends the token back as "Authorization: Bearer <token>"
//  3. OptionalAuth/RequireAuth call Verify and put a model.Viewer in the context
//
// Tokens are stateless JWTs signed with HMAC-SHA256. Every replica serving the
// API must be configured with the same secret. There is no revocation list: a
// token is valid until it expires or the secret changes.
//
// JWT STRUCTURE:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:  {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<user id>","iss":"conduit","iat":…,"nbf":…,"exp":…,
//	            "nbf_ns":…,"exp_ns":…}
//
// nbf and exp are JWT numeric dates, whole seconds only. nbf_ns and exp_ns
// carry the exact window in Unix nanoseconds, and Verify prefers them.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// Verification failures. Each one is returned wrapped in a *TokenError, so
// callers can match with errors.Is(err, auth.ErrExpired) and so on.
var (
	ErrMalformed      = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad token signature")
	ErrNotYetValid    = errors.New("token not yet valid")
	ErrExpired        = errors.New("token expired")
	ErrInvalidSubject = errors.New("invalid token subject")
)

// TokenError is the error returned by Verify. Kind is one of the sentinels
// above; Cause is the underlying library error, if there was one.
type TokenError struct {
	Kind  error
	Cause error
}

func (e *TokenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auth: %v: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("auth: %v", e.Kind)
}

func (e *TokenError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// claims adds the nanosecond window to the registered claims.
type claims struct {
	jwt.RegisteredClaims
	NotBeforeNanos int64 `json:"nbf_ns,omitempty"`
	ExpiresNanos   int64 `json:"exp_ns,omitempty"`
}

// window returns the validity window, exact when the nanosecond claims are
// present. ok is false when the token has no expiry at all.
func (c *claims) window() (nbf, exp time.Time, ok bool) {
	switch {
	case c.ExpiresNanos != 0:
		exp = time.Unix(0, c.ExpiresNanos)
	case c.ExpiresAt != nil:
		exp = c.ExpiresAt.Time
	default:
		return time.Time{}, time.Time{}, false
	}

	switch {
	case c.NotBeforeNanos != 0:
		nbf = time.Unix(0, c.NotBeforeNanos)
	case c.NotBefore != nil:
		nbf = c.NotBefore.Time
	}
	return nbf, exp, true
}

// ceilSecond rounds t up to a whole second.
func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); r.Before(t) {
		return r.Add(time.Second)
	}
	return t
}

// MinSecretLength is the shortest signing secret NewTokenService accepts.
const MinSecretLength = 16

// TokenService signs and verifies tokens with a fixed secret.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a TokenService. An empty issuer disables the "iss"
// claim. Generate a secret with: openssl rand -hex 32
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: signing secret must be at least %d characters", MinSecretLength)
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// Issue signs a token for subject that is valid from now until now+ttl.
//
// The window is exact: Verify accepts the token at now and at now+ttl and
// rejects it a nanosecond outside either end. The whole-second nbf and exp
// claims are rounded outward (nbf down, exp up) so they always cover it.
func (s *TokenService) Issue(subject string, now time.Time, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("auth: token subject must not be empty")
	}
	if ttl <= 0 {
		return "", errors.New("auth: token ttl must be positive")
	}

	exp := now.Add(ttl)
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Truncate(time.Second)),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(exp)),
		},
		NotBeforeNanos: now.UnixNano(),
		ExpiresNanos:   exp.UnixNano(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify checks tokenStr at time now and returns its subject.
//
// The library verifies the structure and the HS256 signature; the time
// window is checked here so that both ends are inclusive:
// a token is valid for every now with nbf <= now <= exp, using the
// nanosecond claims when the token carries them.
//
// ALGORITHM CONFUSION:
// jwt.WithValidMethods rejects "none" and every non-HS256 algorithm before
// the key function is consulted.
func (s *TokenService) Verify(tokenStr string, now time.Time) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", classify(err)
	}

	nbf, exp, ok := c.window()
	if !ok {
		return "", &TokenError{Kind: ErrMalformed, Cause: errors.New("missing exp claim")}
	}
	if s.issuer != "" && c.Issuer != s.issuer {
		return "", &TokenError{Kind: ErrMalformed, Cause: fmt.Errorf("unexpected issuer %q", c.Issuer)}
	}
	if !nbf.IsZero() && now.Before(nbf) {
		return "", &TokenError{Kind: ErrNotYetValid}
	}
	if now.After(exp) {
		return "", &TokenError{Kind: ErrExpired}
	}

	if _, err := xid.FromString(c.Subject); err != nil {
		return "", &TokenError{Kind: ErrInvalidSubject, Cause: err}
	}
	return c.Subject, nil
}

// classify maps jwt library parse errors onto the verification sentinels.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &TokenError{Kind: ErrBadSignature, Cause: err}
	default:
		return &TokenError{Kind: ErrMalformed, Cause: err}
	}
}
