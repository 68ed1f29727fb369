package routes

import (
	"net/http"

	"algoquest/handlers"
	"algoquest/logger"
	"algoquest/middleware"
	"algoquest/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		},
	}
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	missionHandler *handlers.MissionHandler,
	progressHandler *handlers.ProgressHandler,
	authMiddleware *middleware.AuthMiddleware,
	hub *services.Hub,
	allowedOrigins []string,
	log *logger.Logger,
) {
	api := router.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.GET("/missions", missionHandler.ListMissions)

		protected := api.Group("/")
		protected.Use(authMiddleware.RequireAuth())
		{
			protected.GET("/user/me", authHandler.Me)
			protected.POST("/token/refresh", authHandler.Refresh)

			protected.GET("/progress", progressHandler.GetProgress)
			protected.POST("/progress", progressHandler.RecordProgress)
			protected.GET("/mission_scores", progressHandler.ListMissionScores)

			protected.POST("/mission/submit", missionHandler.Submit)
		}
	}

	// Realtime feed of the caller's own ledger events.
	upgrader := newUpgrader(allowedOrigins)
	router.GET("/ws", authMiddleware.RequireAuth(), func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already written the error response.
			log.Warn("WebSocket upgrade failed", "user_id", userID, "error", err)
			return
		}

		hub.RegisterClient(conn, userID)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
