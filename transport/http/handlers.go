package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/humangate/core"
	"github.com/layer-3/humangate/service"
)

// Handlers contains HTTP handlers for verification and post endpoints
type Handlers struct {
	verification *service.VerificationService
	posts        *service.PostService
	logger       *slog.Logger
}

// NewHandlers creates new handlers
func NewHandlers(verification *service.VerificationService, posts *service.PostService, logger *slog.Logger) *Handlers {
	return &Handlers{
		verification: verification,
		posts:        posts,
		logger:       logger,
	}
}

// ChallengeResponse is a challenge as shown to the client, without its answer
type ChallengeResponse struct {
	ID      string             `json:"id"`
	Type    core.ChallengeType `json:"challenge_type"`
	Grid    core.Grid          `json:"grid"`
	Options []core.Grid        `json:"options"`
}

// SessionResponse summarizes an identity's verification progress
type SessionResponse struct {
	Identity            string     `json:"identity"`
	ChallengesCompleted uint8      `json:"challenges_completed"`
	CurrentChallengeID  string     `json:"current_challenge_id,omitempty"`
	StartedAt           time.Time  `json:"started_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

// AnswerRequest submits an answer to the current challenge
type AnswerRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
	Answer      *int   `json:"answer" binding:"required,min=0,max=3"`
}

// CredentialRequest carries a credential to verify
type CredentialRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// PostRequest creates a post
type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// StartSession handles session start
func (h *Handlers) StartSession(c *gin.Context) {
	msg, err := h.verification.StartSession(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// GetSession returns the caller's session
func (h *Handlers) GetSession(c *gin.Context) {
	session, err := h.verification.GetSession(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := SessionResponse{
		Identity:            session.Identity,
		ChallengesCompleted: session.ChallengesCompleted,
		StartedAt:           session.StartedAt,
		CompletedAt:         session.CompletedAt,
	}
	if session.CurrentChallenge != nil {
		resp.CurrentChallengeID = session.CurrentChallenge.ID
	}
	c.JSON(http.StatusOK, resp)
}

// GetChallenge issues the challenge for a slot
func (h *Handlers) GetChallenge(c *gin.Context) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		h.writeError(c, core.ErrInvalidSlot)
		return
	}

	challenge, err := h.verification.GetChallenge(c.Request.Context(), identityFrom(c), slot)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChallengeResponse{
		ID:      challenge.ID,
		Type:    challenge.Type,
		Grid:    challenge.Grid,
		Options: challenge.Options,
	})
}

// VerifyAnswer grades an answer
func (h *Handlers) VerifyAnswer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "VALIDATION_ERROR"})
		return
	}

	correct, err := h.verification.VerifyAnswer(c.Request.Context(), identityFrom(c), req.ChallengeID, uint8(*req.Answer))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"correct": correct})
}

// MintProof mints a humanity token
func (h *Handlers) MintProof(c *gin.Context) {
	msg, err := h.verification.MintProof(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// RefreshToken refreshes a humanity token
func (h *Handlers) RefreshToken(c *gin.Context) {
	msg, err := h.verification.RefreshToken(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// HumanityStatus returns the caller's valid token
func (h *Handlers) HumanityStatus(c *gin.Context) {
	token, err := h.verification.CheckHumanityStatus(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// IssueCredential returns the caller's token as a signed credential
func (h *Handlers) IssueCredential(c *gin.Context) {
	credential, token, err := h.verification.IssueCredential(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credential": credential,
		"token_type": "Bearer",
		"expires_at": token.ExpiresAt,
	})
}

// VerifyCredential checks a credential presented by a third party
func (h *Handlers) VerifyCredential(c *gin.Context) {
	var req CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "VALIDATION_ERROR"})
		return
	}

	token, err := h.verification.VerifyCredential(c.Request.Context(), req.Credential)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// CreatePost creates a post for a verified caller
func (h *Handlers) CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": "VALIDATION_ERROR"})
		return
	}

	id, err := h.posts.CreatePost(c.Request.Context(), identityFrom(c), req.Title, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ListPosts returns all posts, newest first
func (h *Handlers) ListPosts(c *gin.Context) {
	posts, err := h.posts.GetAllPosts(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// Health reports liveness
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
