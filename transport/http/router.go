package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/humangate/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(verification *service.VerificationService, posts *service.PostService, logger *slog.Logger) *gin.Engine {
	router := gin.Default()
	router.Use(RequestIDMiddleware())

	handlers := NewHandlers(verification, posts, logger)

	router.GET("/healthz", handlers.Health)
	router.GET("/posts", handlers.ListPosts)
	router.POST("/humanity/credential/verify", handlers.VerifyCredential)

	// Routes acting on behalf of the calling identity
	verify := router.Group("/verification")
	verify.Use(IdentityMiddleware())
	{
		verify.POST("/session", handlers.StartSession)
		verify.GET("/session", handlers.GetSession)
		verify.GET("/challenges/:slot", handlers.GetChallenge)
		verify.POST("/answers", handlers.VerifyAnswer)
		verify.POST("/mint", handlers.MintProof)
		verify.POST("/refresh", handlers.RefreshToken)
	}

	humanity := router.Group("/humanity")
	humanity.Use(IdentityMiddleware())
	{
		humanity.GET("/status", handlers.HumanityStatus)
		humanity.GET("/credential", handlers.IssueCredential)
	}

	router.POST("/posts", IdentityMiddleware(), handlers.CreatePost)

	return router
}
