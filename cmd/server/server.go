package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stayverse/chatcore/internal/config"
	"github.com/stayverse/chatcore/internal/database"
	"github.com/stayverse/chatcore/internal/handlers"
	"github.com/stayverse/chatcore/internal/storage"
	ws "github.com/stayverse/chatcore/internal/websocket"
	"github.com/stayverse/chatcore/pkg/auth"
)

type Server struct {
	Config *config.Config
	Router *gin.Engine
	DB     *database.Database
	Redis  *redis.Client
	Hub    *ws.Hub
}

func NewServer() (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db := &database.Database{}
	if err := db.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	hub := ws.NewHub()
	go hub.Run()

	uploader, err := storage.NewLocalUploader(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatalf("Upload dir init failed: %v", err)
	}

	chatH := handlers.NewChatHandler(db, hub)
	wsH := handlers.NewWebSocketHandler(hub, db, chatH)
	authH := handlers.NewAuthHandler(db, jwtMgr, rdb)
	roomH := handlers.NewRoomHandler(db, hub)
	uploadH := handlers.NewUploadHandler(db, hub, uploader, cfg.MaxUploadSize)

	router := gin.Default()
	APIEndpoints(router, cfg, jwtMgr, rdb, db, authH, roomH, uploadH, wsH)

	return &Server{
		Config: cfg,
		Router: router,
		DB:     db,
		Redis:  rdb,
		Hub:    hub,
	}, nil
}

func (s *Server) Run() {
	log.Printf("Server starting on port %s", s.Config.Port)
	if err := s.Router.Run(":" + s.Config.Port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
