package http

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// IdentityHeader carries the caller identity resolved by the platform
	IdentityHeader = "X-Identity"

	RequestIDHeader = "X-Request-ID"

	identityKey = "identity"
)

// IdentityMiddleware requires an identity header and stores the normalized
// identity in the context. Hex addresses are converted to their EIP-55
// checksum form so that different spellings map to the same identity.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := NormalizeIdentity(c.GetHeader(IdentityHeader))
		if identity == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "identity header is required", "code": "UNAUTHENTICATED"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// NormalizeIdentity trims the identity and canonicalizes 0x-prefixed
// Ethereum addresses. Anything else is passed through unchanged.
func NormalizeIdentity(identity string) string {
	identity = strings.TrimSpace(identity)
	if has0xPrefix(identity) && common.IsHexAddress(identity) {
		return common.HexToAddress(identity).Hex()
	}
	return identity
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// RequestIDMiddleware propagates or assigns a request id
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

func identityFrom(c *gin.Context) string {
	return c.GetString(identityKey)
}
