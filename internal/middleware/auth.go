package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stayverse/chatcore/internal/database"
	"github.com/stayverse/chatcore/pkg/auth"
)

const UserIDKey = "userID"

// AuthMiddleware проверяет JWT токен на REST-маршрутах
func AuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client, db *database.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			c.Abort()
			return
		}

		authenticate(c, token, jwtManager, redisClient, db)
	}
}

// WSAuthMiddleware аутентифицирует рукопожатие WebSocket: токен приходит
// либо в query-параметре, либо в Authorization header. Отказ здесь —
// единственный случай, когда соединение не устанавливается вовсе.
func WSAuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client, db *database.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractToken(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		authenticate(c, token, jwtManager, redisClient, db)
	}
}

func authenticate(c *gin.Context, token string, jwtManager *auth.JWTManager, redisClient *redis.Client, db *database.Database) {
	// Отозванные токены лежат в черном списке до истечения
	exists, err := redisClient.Exists(context.Background(), "blacklist:"+token).Result()
	if err != nil || exists > 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is blacklisted"})
		c.Abort()
		return
	}

	userID, err := jwtManager.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return
	}

	// Токен обязан указывать на существующего пользователя
	if _, err := db.GetUser(userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		c.Abort()
		return
	}

	c.Set(UserIDKey, userID)
	c.Next()
}

// CallerID достает аутентифицированный ID из контекста запроса
func CallerID(c *gin.Context) uuid.UUID {
	return c.MustGet(UserIDKey).(uuid.UUID)
}
