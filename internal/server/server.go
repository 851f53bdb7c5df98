package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fabula/internal/ai"
	"fabula/internal/config"
	"fabula/internal/handler"
	storyHandler "fabula/internal/handler/story"
	storyModel "fabula/internal/model/story"
	"fabula/internal/pkg/cache"
	"fabula/internal/pkg/imagestore"
	"fabula/internal/pkg/mongodb"
	"fabula/internal/pkg/session"
	"fabula/internal/pkg/storagefactory"
	"fabula/internal/pkg/tts"
	storyRepo "fabula/internal/repository/story"
	"fabula/internal/server/middleware"
	"fabula/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg      *config.Config
	engine   *gin.Engine
	mongo    *mongodb.Client
	redis    *cache.RedisCache
	sessions *session.Manager
	storySvc service.StoryService
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// 初始化 MongoDB (可选：未配置时故事不落库)
	var mongoClient *mongodb.Client
	var repo storyRepo.StoryRepository
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			mongoClient = client
			repo = storyRepo.NewStoryRepo(client.Database())
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			if err := mongodb.EnsureAllIndexes(context.Background(), client.Database(), &storyModel.Story{}); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	} else {
		log.Warn().Msg("MongoDB not configured, stories will not be persisted")
	}

	// 初始化 Redis (可选：未配置时会话放进程内缓存)
	var redisCache *cache.RedisCache
	var sessionStore session.Store
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, falling back to in-memory sessions")
		} else {
			redisCache = rc
			sessionStore = session.NewRedisStore(rc, cfg.Session.TTL)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}
	if sessionStore == nil {
		sessionStore = session.NewMemoryStore(cfg.Session.TTL)
	}

	// 会话签名密钥
	sessionSecret := cfg.Session.Secret
	if sessionSecret == "" {
		sessionSecret = "default-secret-key-change-in-production"
		log.Warn().Msg("session secret not configured, using default (NOT SECURE for production)")
	}
	sessions := session.NewManager(sessionStore, sessionSecret, cfg.Session.CookieName, cfg.Session.TTL)

	// 二进制存储（图片暂存 + 合成音频）
	st, err := storagefactory.NewStorage(&cfg.Storage)
	if err != nil {
		return nil, err
	}
	images := imagestore.New(st)

	// AI 客户端 (可选：没有密钥时只警告，生成接口返回错误)
	var narrator ai.Narrator
	if cfg.AI.APIKey == "" {
		log.Warn().Msg("AI API key not configured, story generation disabled")
	} else {
		client, err := ai.NewClient(context.Background(), &cfg.AI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize AI client, story generation disabled")
		} else {
			narrator = client
			log.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.Model).Msg("initialized AI client")
		}
	}

	// TTS 客户端 (可选)
	var synthesizer service.Synthesizer
	if ttsClient, err := tts.NewClient(&cfg.TTS); err != nil {
		log.Warn().Err(err).Msg("TTS not configured, speech generation disabled")
	} else {
		synthesizer = ttsClient
	}

	storySvc := service.NewStoryService(narrator, synthesizer, images, repo, st, cfg.Image.MaxDimension)

	srv := &Server{
		cfg:      cfg,
		engine:   engine,
		mongo:    mongoClient,
		redis:    redisCache,
		sessions: sessions,
		storySvc: storySvc,
	}

	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())
	s.engine.Use(middleware.Session(s.sessions))

	// 健康检查
	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	storyHdl := storyHandler.NewHandler(s.storySvc, s.sessions, s.cfg.Image.TempDir)

	s.engine.GET("/", storyHdl.Index)
	s.engine.GET("/set-language/:lang", storyHdl.SetLanguage)
	s.engine.POST("/upload", storyHdl.Upload)
	s.engine.POST("/regenerate", storyHdl.Regenerate)
	s.engine.POST("/generate-speech", storyHdl.GenerateSpeech)
	s.engine.GET("/stories", storyHdl.ListStories)
	s.engine.GET("/stories/:id", storyHdl.GetStory)
	s.engine.DELETE("/stories/:id", storyHdl.DeleteStory)
	s.engine.GET("/static/audio/:filename", storyHdl.ServeAudio)
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
