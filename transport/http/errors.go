package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/humangate/core"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{core.ErrAlreadyVerified, http.StatusConflict, "ALREADY_VERIFIED"},
	{core.ErrNoActiveSession, http.StatusConflict, "NO_ACTIVE_SESSION"},
	{core.ErrInvalidSlot, http.StatusBadRequest, "INVALID_SLOT"},
	{core.ErrInvalidChallenge, http.StatusBadRequest, "INVALID_CHALLENGE"},
	{core.ErrIncompleteChallenges, http.StatusForbidden, "INCOMPLETE_CHALLENGES"},
	{core.ErrNotEligible, http.StatusForbidden, "NOT_ELIGIBLE"},
	{core.ErrChallengeRequired, http.StatusForbidden, "CHALLENGE_REQUIRED"},
	{core.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
	{core.ErrTokenNotFound, http.StatusNotFound, "NOT_FOUND"},
	{core.ErrTokenExpired, http.StatusGone, "EXPIRED"},
	{core.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
}

// writeError maps a service error to a status code and a stable error code.
// Unknown errors are reported as internal without leaking their text.
func (h *Handlers) writeError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			message := m.err.Error()
			var validationErr *core.ValidationError
			if errors.As(err, &validationErr) {
				message = validationErr.Reason
			}
			c.JSON(m.status, gin.H{"error": message, "code": m.code})
			return
		}
	}

	h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "INTERNAL"})
}
