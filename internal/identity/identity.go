// Package identity resolves incoming HTTP requests to principals. The bank
// core only authorizes already-identified callers; everything about how a
// caller proves who they are lives here.
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/interfaces"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
)

// ErrNoIdentity means the request carried no usable credentials.
var ErrNoIdentity = errors.New("no caller identity")

// HeaderProvider reads the principal straight from a trusted header. Only for
// local and dev deployments where a fronting proxy (or the developer) is
// trusted to set it.
type HeaderProvider struct {
	Header string // defaults to X-Principal
}

func (p HeaderProvider) Resolve(r *http.Request) (models.Principal, error) {
	header := p.Header
	if header == "" {
		header = "X-Principal"
	}
	v := strings.TrimSpace(r.Header.Get(header))
	if v == "" {
		return "", fmt.Errorf("%w: missing %s header", ErrNoIdentity, header)
	}
	return models.Principal(v), nil
}

// JWTProvider resolves the principal from an HS256-signed bearer token's
// subject claim.
type JWTProvider struct {
	secret []byte
}

func NewJWTProvider(secret string) (*JWTProvider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTProvider{secret: []byte(secret)}, nil
}

func (p *JWTProvider) Resolve(r *http.Request) (models.Principal, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", fmt.Errorf("%w: missing Authorization header", ErrNoIdentity)
	}
	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return "", fmt.Errorf("%w: Authorization header is not a bearer token", ErrNoIdentity)
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoIdentity, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrNoIdentity)
	}
	return models.Principal(sub), nil
}

var (
	_ interfaces.IdentityProvider = HeaderProvider{}
	_ interfaces.IdentityProvider = (*JWTProvider)(nil)
)
