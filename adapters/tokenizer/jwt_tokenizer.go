package tokenizer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/humangate/core"
	"github.com/layer-3/humangate/ports"
)

const AudienceHumanity = "humanity:token"

// HumanityClaims are the standard claims of a humanity credential
type HumanityClaims struct {
	jwt.RegisteredClaims
}

// JWTTokenizer implements the Tokenizer interface using ES256 JWTs
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
	clock   clock.Clock
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(signKey *ecdsa.PrivateKey, clk clock.Clock) ports.Tokenizer {
	return &JWTTokenizer{signKey: signKey, clock: clk}
}

// TokenToCredential signs a humanity token
func (j *JWTTokenizer) TokenToCredential(token core.HumanityToken) (string, error) {
	claims := HumanityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   token.Identity,
			IssuedAt:  jwt.NewNumericDate(token.VerifiedAt),
			ExpiresAt: jwt.NewNumericDate(token.ExpiresAt),
			Audience:  jwt.ClaimStrings{AudienceHumanity},
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}

	return signed, nil
}

// CredentialToToken verifies a credential and returns the token it carries
func (j *JWTTokenizer) CredentialToToken(credential string) (*core.HumanityToken, error) {
	token, err := jwt.ParseWithClaims(credential, &HumanityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	},
		jwt.WithAudience(AudienceHumanity),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*HumanityClaims)
	if !ok || claims.Subject == "" || claims.IssuedAt == nil {
		return nil, core.ErrInvalidToken
	}

	return &core.HumanityToken{
		Identity:   claims.Subject,
		VerifiedAt: claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
