package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
)

const (
	claimUsername = "username"
	claimRole     = "role"
)

// Tokens signs and verifies the HS256 access tokens carried on API requests.
// The identity provider lives elsewhere; this service only needs to trust the
// shared secret.
type Tokens struct {
	Secret    []byte
	Issuer    string
	Audience  string
	TTL       time.Duration
	ClockSkew time.Duration
	Now       func() time.Time
}

func (t Tokens) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Issue signs an access token for the given identity. Used by tooling and
// tests; production tokens normally arrive from the identity provider.
func (t Tokens) Issue(id common.Identity) (string, time.Time, error) {
	if len(t.Secret) == 0 {
		return "", time.Time{}, errors.New("auth: secret not configured")
	}
	now := t.now()
	expiresAt := now.Add(t.TTL)
	builder := jwt.NewBuilder().
		Subject(id.UserID).
		Issuer(t.Issuer).
		Audience([]string{t.Audience}).
		IssuedAt(now).
		NotBefore(now.Add(-t.ClockSkew)).
		Expiration(expiresAt).
		Claim(claimUsername, id.Username).
		Claim(claimRole, id.Role)
	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, t.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

// Parse verifies a token and returns the identity it carries.
func (t Tokens) Parse(token string) (common.Identity, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return common.Identity{}, common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return common.Identity{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if algorithm != jwa.HS256 {
		return common.Identity{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	// Claim validation happens in t.validate below with the configured clock;
	// the parse step only needs to verify the signature.
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, t.Secret), jwt.WithValidate(false))
	if err != nil {
		return common.Identity{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if err := t.validate(parsed); err != nil {
		return common.Identity{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}

	id := common.Identity{UserID: parsed.Subject(), Role: common.RoleCustomer}
	if v, ok := parsed.Get(claimUsername); ok {
		if s, ok := v.(string); ok {
			id.Username = s
		}
	}
	if v, ok := parsed.Get(claimRole); ok {
		if s, ok := v.(string); ok && s != "" {
			id.Role = s
		}
	}
	if id.UserID == "" {
		return common.Identity{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, errors.New("auth: token missing subject"))
	}
	return id, nil
}

func (t Tokens) validate(tok jwt.Token) error {
	now := t.now()
	options := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
	}
	if t.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(t.ClockSkew))
	}
	if t.Issuer != "" {
		options = append(options, jwt.WithIssuer(t.Issuer))
	}
	if t.Audience != "" {
		options = append(options, jwt.WithAudience(t.Audience))
	}
	return jwt.Validate(tok, options...)
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", errors.New("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}
