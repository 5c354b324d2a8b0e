package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stayverse/chatcore/internal/config"
	"github.com/stayverse/chatcore/internal/database"
	"github.com/stayverse/chatcore/internal/handlers"
	"github.com/stayverse/chatcore/internal/middleware"
	"github.com/stayverse/chatcore/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	cfg *config.Config,
	jwtMgr *auth.JWTManager,
	rdb *redis.Client,
	db *database.Database,
	authH *handlers.AuthHandler,
	roomH *handlers.RoomHandler,
	uploadH *handlers.UploadHandler,
	wsH *handlers.WebSocketHandler,
) {
	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/logout", authH.Logout)
	}

	// API endpoints
	api := r.Group("/api", middleware.AuthMiddleware(jwtMgr, rdb, db))
	{
		api.GET("/chatrooms", roomH.GetMyRooms)
		api.POST("/chatrooms", roomH.CreateRoom)
		api.POST("/chatrooms/direct", roomH.CreateDirectRoom)
		api.GET("/chatrooms/:roomId/messages", roomH.GetRoomMessages)
		api.GET("/users/available", roomH.GetAvailableUsers)

		api.POST("/chat/upload/:roomId", uploadH.UploadChatFile)
	}

	// Realtime endpoint: токен приходит в query или в header
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb, db), wsH.HandleWebSocket)

	// Раздача локально сохраненных вложений
	r.Static(cfg.UploadBaseURL, cfg.UploadDir)
}
