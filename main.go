// Data Sentry API 서버 엔트리포인트
//
// 기동 흐름:
//  1. .env 로딩 및 환경변수 설정 파싱
//  2. PostgreSQL 연결 시도 (실패해도 아카이브/인증만 비활성, 오케스트레이션은 계속)
//  3. 추론/Slack 클라이언트 초기화 (미설정 시 degraded 모드)
//  4. store → service 레이어 조립 후 오케스트레이터 이벤트 루프 기동
//  5. gin 라우터 구성 및 서버 시작

package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/data-sentry/backend/internal/client"
	"github.com/data-sentry/backend/internal/config"
	"github.com/data-sentry/backend/internal/db"
	"github.com/data-sentry/backend/internal/handler"
	"github.com/data-sentry/backend/internal/metrics"
	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/service"
	"github.com/data-sentry/backend/internal/store"
)

func main() {
	// .env는 로컬 개발 편의용 (없어도 무방)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	cfg := config.Load()
	ctx := context.Background()

	// 1. PostgreSQL (best-effort)
	var database *db.Postgres
	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Printf("Postgres disabled, running without archive/auth: %v", err)
	} else {
		defer pool.Close()
		database = &db.Postgres{Pool: pool}
		if err := database.EnsureLogSchema(ctx); err != nil {
			log.Printf("Failed to ensure log schema: %v", err)
		}
		if err := database.EnsureAlertSchema(ctx); err != nil {
			log.Printf("Failed to ensure alert schema: %v", err)
		}
	}

	// 2. 추론 클라이언트 (AI_API_KEY 없으면 감지/진단/채팅 비활성)
	var inference *client.InferenceClient
	if cfg.AI.APIKey == "" {
		log.Printf("AI_API_KEY is not set, inference features are disabled")
	} else {
		inference, err = client.NewInferenceClient(cfg.AI)
		if err != nil {
			log.Printf("Inference client init failed, running degraded: %v", err)
		}
	}

	slack := client.NewSlackClient(cfg.Slack)
	if !slack.IsConfigured() {
		log.Printf("Slack notifications disabled (SLACK_BOT_TOKEN/SLACK_CHANNEL_ID missing)")
	}

	// 3. 메트릭 등록
	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		log.Printf("Failed to register metrics: %v", err)
	}

	// 4. 인메모리 store (source of truth)
	logs := store.NewLogStore()
	alerts := store.NewAlertStore()
	hub := handler.NewStreamHub()

	// nil 인터페이스 주의: 미설정 시 구체 타입 nil을 그대로 넘기지 않는다
	var correlator service.Correlator
	var diagnoser service.Diagnoser
	var parser service.LogParser
	var chatModel service.ChatModel
	if inference != nil {
		correlator = inference
		diagnoser = inference
		parser = inference
		chatModel = inference
	}

	healer := service.NewHealer(logs, alerts, diagnoser,
		time.Duration(cfg.Healing.ThinkSeconds)*time.Second,
		time.Duration(cfg.Healing.ActionSeconds)*time.Second)
	healer.SetPublisher(hub.Publish)

	detector := service.NewDetector(logs, alerts, correlator)
	orchestrator := service.NewOrchestrator(alerts, detector, healer)
	orchestrator.SetPublisher(hub.Publish)

	ingest := service.NewIngestService(logs, parser, cfg.Ingest.MaxChars)
	ingest.SetPublisher(hub.Publish)
	ingest.SetNotifier(orchestrator.NotifyLogAppended)

	if slack.IsConfigured() {
		healer.SetNotifier(slack)
		orchestrator.SetNotifier(slack)
	}

	if database != nil {
		ingest.SetArchiver(database)
		orchestrator.SetArchiver(func(alert model.Alert) {
			go func() {
				if err := database.ArchiveAlert(context.Background(), alert); err != nil {
					log.Printf("Failed to archive alert: %v", err)
				}
			}()
		})
		healer.SetOnLogAppended(func(record model.LogRecord) {
			go func() {
				if err := database.ArchiveLogs(context.Background(), []model.LogRecord{record}); err != nil {
					log.Printf("Failed to archive success log: %v", err)
				}
			}()
		})
	}

	// 5. 유사 장애 검색 (DB + 임베딩 모두 필요)
	var resolutions *service.ResolutionService
	if database != nil && inference != nil {
		if err := database.EnsureResolutionSchema(ctx); err != nil {
			log.Printf("Similarity search disabled (pgvector schema): %v", err)
		} else {
			resolutions = service.NewResolutionService(database, inference, alerts)
		}
	}

	if database != nil {
		healer.SetOnResolved(func(alert model.Alert) {
			go func() {
				if err := database.ArchiveAlert(context.Background(), alert); err != nil {
					log.Printf("Failed to archive resolved alert: %v", err)
				}
				if resolutions != nil {
					resolutions.IndexResolution(alert)
				}
			}()
		})
	}

	// 6. 인증 (DB + JWT_SECRET 필요, 없으면 공개 모드)
	var authService *service.AuthService
	if database != nil && cfg.Auth.JWTSecret != "" {
		authService, err = service.NewAuthService(database, db.IsNoRows, cfg.Auth)
		if err != nil {
			log.Fatalf("Auth service init failed: %v", err)
		}
		if err := authService.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure auth schema: %v", err)
		}
		if cfg.Auth.AdminUsername != "" || cfg.Auth.AdminPassword != "" {
			if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
				log.Fatalf("Failed to bootstrap admin user: %v", err)
			}
		}
	} else {
		log.Printf("Auth disabled, API is running in open mode")
	}

	// 7. 오케스트레이터 기동
	orchestrator.Start()
	defer orchestrator.Stop()

	// 8. 라우터 구성
	router := gin.Default()
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins))

	router.GET("/ping", handler.Ping)
	router.GET("/", handler.Root)
	router.GET("/openapi.json", handler.OpenAPIDoc)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	api.GET("/stream", hub.Serve)

	protected := api
	if authService != nil {
		authHandler := handler.NewAuthHandler(authService)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/config", authHandler.Config)

		protected = api.Group("", handler.AuthMiddleware(authService))
		protected.GET("/auth/me", authHandler.Me)
	}

	logHandler := handler.NewLogHandler(ingest, logs)
	protected.POST("/logs", logHandler.Ingest)
	protected.POST("/logs/batch", logHandler.IngestBatch)
	protected.POST("/logs/demo", logHandler.SeedDemo)
	protected.GET("/logs", logHandler.List)

	alertHandler := handler.NewAlertHandler(alerts, logs, orchestrator, resolutions)
	protected.GET("/alerts", alertHandler.List)
	protected.GET("/alerts/:id", alertHandler.Detail)
	protected.GET("/alerts/:id/logs", alertHandler.RelatedLogs)
	protected.GET("/alerts/:id/similar", alertHandler.Similar)
	protected.POST("/alerts/:id/heal", alertHandler.Heal)

	chatHandler := handler.NewChatHandler(service.NewChatService(alerts, chatModel))
	protected.POST("/chat", chatHandler.Chat)

	log.Printf("Starting Data Sentry API server on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
