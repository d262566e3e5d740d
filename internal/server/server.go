package server

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"assembly-backend/internal/auth"
	"assembly-backend/internal/cache"
	"assembly-backend/internal/config"
	"assembly-backend/internal/handler"
	"assembly-backend/internal/middleware"
	"assembly-backend/internal/presence"
	"assembly-backend/internal/service"
)

// Server enveloppe Fiber et le câblage des handlers
type Server struct {
	app     *fiber.App
	cfg     *config.Config
	db      *gorm.DB
	redis   *cache.RedisClient
	presMgr *presence.Manager

	jwtManager *auth.JWTManager
	checker    *auth.PermissionChecker
	tenantMw   *middleware.TenantMiddleware

	authHandler       *handler.AuthHandler
	memberHandler     *handler.MemberHandler
	meetingHandler    *handler.MeetingHandler
	attendanceHandler *handler.AttendanceHandler
	proxyHandler      *handler.ProxyHandler
	motionHandler     *handler.MotionHandler
	ballotHandler     *handler.BallotHandler
	resultHandler     *handler.ResultHandler
	policyHandler     *handler.PolicyHandler
	healthHandler     *handler.HealthHandler
}

// New construit le serveur et tout le graphe de services
func New(cfg *config.Config, db *gorm.DB) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Assembly Governance API",
		ServerHeader:          "Fiber",
		StrictRouting:         true,
		CaseSensitive:         true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		BodyLimit:             1 * 1024 * 1024, // 1MB
		DisableStartupMessage: false,
	})

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	googleAuth := auth.NewGoogleAuthenticator(cfg.Auth.GoogleClientID)
	checker := auth.NewPermissionChecker()

	// Redis (optionnel: cache de résultats et présence distancielle)
	var redisClient *cache.RedisClient
	var presMgr *presence.Manager
	if cfg.Redis.Addr != "" {
		var err error
		redisClient, err = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("⚠️ Redis connection failed: %v (result cache disabled)", err)
			redisClient = nil
		} else {
			log.Printf("✅ Redis connected (addr: %s)", cfg.Redis.Addr)
			presMgr = presence.NewManager(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Proxy.RemotePresenceTTL)
		}
	} else {
		log.Println("ℹ️ Redis not configured (result cache and remote presence disabled)")
	}

	// Services
	members := service.NewMemberService(db)
	meetings := service.NewMeetingService(db)
	attendance := service.NewAttendanceService(db, members)
	proxies := service.NewProxyService(db, members, cfg.Proxy.ReceiverCap)
	policies := service.NewPolicyService(db)
	tokens := service.NewVoteTokenService(db, members, cfg.Vote.TokenSecret, cfg.Vote.TokenExpiry)
	engine := service.NewVoteEngine(service.NewQuorumEngine())
	motions := service.NewMotionService(db, members, engine, tokens)

	return &Server{
		app:     app,
		cfg:     cfg,
		db:      db,
		redis:   redisClient,
		presMgr: presMgr,

		jwtManager: jwtManager,
		checker:    checker,
		tenantMw:   middleware.NewTenantMiddleware(members),

		authHandler:       handler.NewAuthHandler(db, jwtManager, googleAuth, checker, cfg.Auth.SecureCookie),
		memberHandler:     handler.NewMemberHandler(members),
		meetingHandler:    handler.NewMeetingHandler(meetings),
		attendanceHandler: handler.NewAttendanceHandler(attendance, presMgr),
		proxyHandler:      handler.NewProxyHandler(proxies),
		motionHandler:     handler.NewMotionHandler(motions, redisClient),
		ballotHandler:     handler.NewBallotHandler(motions, tokens, checker, redisClient),
		resultHandler:     handler.NewResultHandler(motions, redisClient, cfg.Vote.ResultCacheTTL),
		policyHandler:     handler.NewPolicyHandler(policies),
		healthHandler:     handler.NewHealthHandler(db),
	}
}

// SetupMiddleware middlewares globaux
func (s *Server) SetupMiddleware() {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Europe/Paris",
	}))

	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
}

// SetupRoutes routes de l'API
func (s *Server) SetupRoutes() {
	// Santé
	s.app.Get("/health", s.healthHandler.Check)
	s.app.Get("/health/live", s.healthHandler.Liveness)
	s.app.Get("/health/ready", s.healthHandler.Readiness)

	// Rate limiter des endpoints d'authentification
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		},
	})

	authGroup := s.app.Group("/auth")
	authGroup.Post("/google", authLimiter, s.authHandler.GoogleLogin)
	authGroup.Post("/refresh", authLimiter, s.authHandler.RefreshToken)
	authGroup.Post("/logout", auth.AuthMiddleware(s.jwtManager), s.authHandler.Logout)
	authGroup.Get("/me", auth.AuthMiddleware(s.jwtManager), s.authHandler.GetMe)

	// Toutes les routes métier sont scopées au tenant du membre connecté
	tenantGroup := s.app.Group("/api/tenants/:tenantId",
		auth.AuthMiddleware(s.jwtManager),
		s.tenantMw.RequireMembership(),
	)

	// Membres
	tenantGroup.Get("/members", s.require(auth.PermMeetingRead), s.memberHandler.GetMembers)
	tenantGroup.Get("/members/:memberId", s.require(auth.PermMeetingRead), s.memberHandler.GetMember)

	// Séances
	tenantGroup.Post("/meetings", s.require(auth.PermMeetingCreate), s.meetingHandler.CreateMeeting)
	tenantGroup.Get("/meetings", s.require(auth.PermMeetingRead), s.meetingHandler.GetMeetings)
	tenantGroup.Get("/meetings/:meetingId", s.require(auth.PermMeetingRead), s.meetingHandler.GetMeeting)
	tenantGroup.Post("/meetings/:meetingId/transition", s.meetingHandler.Transition)
	tenantGroup.Get("/meetings/:meetingId/transitions", s.require(auth.PermMeetingRead), s.meetingHandler.AvailableTransitions)

	// Présences
	tenantGroup.Put("/meetings/:meetingId/attendance", s.require(auth.PermAttendanceWrite), s.attendanceHandler.UpsertAttendance)
	tenantGroup.Get("/meetings/:meetingId/attendance", s.require(auth.PermAttendanceRead), s.attendanceHandler.GetAttendance)
	tenantGroup.Post("/meetings/:meetingId/heartbeat", s.require(auth.PermMeetingRead), s.attendanceHandler.Heartbeat)
	tenantGroup.Get("/meetings/:meetingId/remote-connected", s.require(auth.PermAttendanceRead), s.attendanceHandler.RemoteConnected)

	// Pouvoirs
	tenantGroup.Put("/meetings/:meetingId/proxies", s.require(auth.PermProxyWrite), s.proxyHandler.UpsertProxy)
	tenantGroup.Delete("/meetings/:meetingId/proxies/:giverId", s.require(auth.PermProxyWrite), s.proxyHandler.RevokeProxy)
	tenantGroup.Get("/meetings/:meetingId/proxies", s.require(auth.PermProxyRead), s.proxyHandler.GetProxies)
	tenantGroup.Get("/meetings/:meetingId/proxies/:giverId/:receiverId", s.require(auth.PermProxyRead), s.proxyHandler.CheckProxy)

	// Motions
	tenantGroup.Post("/meetings/:meetingId/motions", s.require(auth.PermMotionManage), s.motionHandler.CreateMotion)
	tenantGroup.Get("/meetings/:meetingId/motions", s.require(auth.PermMotionRead), s.motionHandler.GetMotions)
	tenantGroup.Get("/motions/:motionId", s.require(auth.PermMotionRead), s.motionHandler.GetMotion)
	tenantGroup.Post("/motions/:motionId/open", s.require(auth.PermMotionManage), s.motionHandler.OpenMotion)
	tenantGroup.Post("/motions/:motionId/close", s.require(auth.PermMotionManage), s.motionHandler.CloseMotion)

	// Vote
	tenantGroup.Post("/motions/:motionId/tokens", s.require(auth.PermTokenIssue), s.ballotHandler.IssueToken)
	tenantGroup.Post("/motions/:motionId/ballots", s.require(auth.PermBallotCast), s.ballotHandler.CastBallot)
	tenantGroup.Get("/motions/:motionId/result", s.require(auth.PermResultRead), s.resultHandler.GetResult)

	// Politiques de quorum et de majorité
	tenantGroup.Post("/policies/quorum", s.require(auth.PermPolicyWrite), s.policyHandler.CreateQuorumPolicy)
	tenantGroup.Get("/policies/quorum", s.require(auth.PermPolicyRead), s.policyHandler.GetQuorumPolicies)
	tenantGroup.Post("/policies/vote", s.require(auth.PermPolicyWrite), s.policyHandler.CreateVotePolicy)
	tenantGroup.Get("/policies/vote", s.require(auth.PermPolicyRead), s.policyHandler.GetVotePolicies)
}

func (s *Server) require(perm auth.Permission) fiber.Handler {
	return auth.RequirePermission(s.checker, perm)
}

// Start démarre le serveur avec arrêt gracieux
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Fatalf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 Assembly Governance API starting on %s", s.cfg.Server.Port)

	return s.app.Listen(s.cfg.Server.Port)
}

// Shutdown arrête le serveur et ferme les connexions Redis
func (s *Server) Shutdown() error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("⚠️ Redis close error: %v", err)
		}
	}
	if s.presMgr != nil {
		if err := s.presMgr.Close(); err != nil {
			log.Printf("⚠️ Presence close error: %v", err)
		}
	}
	return s.app.ShutdownWithTimeout(30 * time.Second)
}
