package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/sessions"
	"github.com/shelfwise/quiz-service/internal/utils"
)

type HandlerManager struct {
	quizHandler    *QuizHandler
	sessionHandler *SessionHandler
}

func NewHandlerManager(
	client backend.Client,
	sessionManager *sessions.Manager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:    NewQuizHandler(client, logger),
		sessionHandler: NewSessionHandler(sessionManager, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Quiz catalog and the raw attempt surface; resthttp clients in
		// other deployments consume these directly.
		quizzes := v1.Group("/quizzes")
		{
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.POST("/:id/attempts", hm.quizHandler.StartAttempt)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.POST("/:id/submit", hm.quizHandler.SubmitAttempt)
		}

		// Live sessions: the stateful attempt engine behind HTTP.
		sessionRoutes := v1.Group("/sessions")
		{
			sessionRoutes.POST("", hm.sessionHandler.CreateSession)
			sessionRoutes.GET("/:id", hm.sessionHandler.GetSession)
			sessionRoutes.PUT("/:id/answers/:question_id", hm.sessionHandler.PutAnswer)
			sessionRoutes.POST("/:id/submit", hm.sessionHandler.SubmitSession)
			sessionRoutes.POST("/:id/retry", hm.sessionHandler.RetrySession)
			sessionRoutes.DELETE("/:id", hm.sessionHandler.DeleteSession)
		}
	}
}
