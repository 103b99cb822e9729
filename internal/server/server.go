package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emilythestrangee/qa-forum/backend/internal/config"
	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/handlers"
	"github.com/emilythestrangee/qa-forum/backend/internal/middleware"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	handler *handlers.Handler
	log     zerolog.Logger
}

// NewServer creates and configures a new server
func NewServer(cfg *config.Config, db database.Service, log zerolog.Logger) *http.Server {
	s := &Server{
		cfg:     cfg,
		db:      db,
		handler: handlers.NewHandler(db, cfg, log),
		log:     log,
	}

	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(s.log))

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if allowsAll(s.cfg.CORSOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		stats := s.db.Health(c.Request.Context())
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Public reads
		api.GET("/users/:id", s.handler.User.GetUserProfile)
		api.GET("/questions", s.handler.Question.ListQuestions)
		api.GET("/questions/:id", s.handler.Question.GetQuestion)
		api.GET("/questions/:id/answers", s.handler.Answer.GetAnswers)
		api.GET("/votes/count", s.handler.Vote.GetVoteCount)
		api.GET("/tags", s.handler.Tag.ListTags)
		api.GET("/comments", s.handler.Comment.GetComments)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.cfg.JWTSecret))
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			protected.POST("/questions", s.handler.Question.CreateQuestion)
			protected.POST("/questions/:id/answers", s.handler.Answer.CreateAnswer)
			protected.POST("/answers/:id/accept", s.handler.Answer.AcceptAnswer)

			protected.POST("/votes", s.handler.Vote.CastVote)
			protected.GET("/votes/mine", s.handler.Vote.GetMyVote)

			protected.POST("/comments", s.handler.Comment.CreateComment)
			protected.PUT("/comments/:id", s.handler.Comment.UpdateComment)
			protected.DELETE("/comments/:id", s.handler.Comment.DeleteComment)
		}
	}

	return r
}

// credentials are only allowed with an explicit origin list
func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
