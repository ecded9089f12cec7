package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cryptocast/cryptocast/internal/billing"
	"github.com/cryptocast/cryptocast/internal/config"
	"github.com/cryptocast/cryptocast/internal/domains/broadcast"
	"github.com/cryptocast/cryptocast/internal/domains/user"
	"github.com/cryptocast/cryptocast/internal/handlers"
	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/cryptocast/cryptocast/pkg/io/device"
	websockete "github.com/cryptocast/cryptocast/pkg/io/device/websocket"
	"github.com/cryptocast/cryptocast/pkg/io/registry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Viewer websocket message types
type ViewerMessageType string

const (
	MessageTypePlaybackEnded ViewerMessageType = "playback_ended"
	MessageTypePing          ViewerMessageType = "ping"
)

// ViewerMessage is one inbound control message from a viewer client.
type ViewerMessage struct {
	Type      ViewerMessageType `json:"type"`
	SessionID string            `json:"sessionId,omitempty"`
}

type Dependencies struct {
	ViewerRegistry   registry.Registry
	UserService      user.UserService
	NewsRepo         broadcast.NewsRepository
	BroadcastService broadcast.BroadcastService
	Credits          *billing.CreditLedger
	Logger           *Logger.Logger
	Configs          *config.Settings
}

func NewServerDependencies(
	viewerRegistry registry.Registry,
	userService user.UserService,
	newsRepo broadcast.NewsRepository,
	broadcastService broadcast.BroadcastService,
	credits *billing.CreditLedger,
	logger *Logger.Logger,
	cfg *config.Settings,
) Dependencies {
	return Dependencies{
		ViewerRegistry:   viewerRegistry,
		UserService:      userService,
		NewsRepo:         newsRepo,
		BroadcastService: broadcastService,
		Credits:          credits,
		Logger:           logger,
		Configs:          cfg,
	}
}

// RoutesManager manages routes and viewer connections
type RoutesManager struct {
	deps Dependencies
}

func NewRoutesManager(deps Dependencies) *RoutesManager {
	return &RoutesManager{deps: deps}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // dev-only
}

func InitializeRoutes(cfg *config.Settings, r *gin.Engine, dep Dependencies) {
	r.Use(handlers.CORSMiddleware())
	r.Use(handlers.RequestLoggerMiddleware(dep.Logger))
	r.Use(handlers.ErrorHandlerMiddleware(dep.Logger))

	r.GET("/", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"message": "Server healthy"}) })
	r.GET("/health", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"status": "ok"}) })

	rm := NewRoutesManager(dep)

	userHandler := handlers.NewUserHandler(dep.UserService, dep.Logger)
	newsHandler := handlers.NewNewsHandler(dep.NewsRepo, dep.Logger)
	broadcastHandler := handlers.NewBroadcastHandler(dep.BroadcastService, dep.Credits, dep.Logger)

	auth := handlers.AuthMiddleware(dep.UserService, dep.Logger)
	admin := handlers.AdminMiddleware()

	api := r.Group("/api/v1")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", userHandler.Register)
			authRoutes.POST("/login", userHandler.Login)
		}

		userRoutes := api.Group("/users", auth)
		{
			userRoutes.GET("/me", userHandler.GetProfile)
			userRoutes.GET("", admin, userHandler.ListUsers)
		}

		newsRoutes := api.Group("/news")
		{
			newsRoutes.GET("", newsHandler.List)
			newsRoutes.POST("", auth, newsHandler.Create)
		}

		streamRoutes := api.Group("/stream", auth)
		{
			streamRoutes.GET("/status", broadcastHandler.Status)
			streamRoutes.POST("/start", admin, broadcastHandler.Start)
			streamRoutes.POST("/stop", admin, broadcastHandler.Stop)
			streamRoutes.POST("/skip", admin, broadcastHandler.Skip)
			streamRoutes.GET("/credits", admin, broadcastHandler.Credits)
		}
	}

	// Viewer delivery: audience clients receive lines, audio and lifecycle
	// events, and report playback completion back.
	r.GET("/ws/viewer", rm.handleViewerWebSocket)
}

func (rm *RoutesManager) handleViewerWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		rm.deps.Logger.Errorf("viewer ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	status, err := rm.deps.BroadcastService.Status(c.Request.Context())
	if err != nil {
		_ = conn.WriteJSON(gin.H{"name": "error", "payload": "no live stream"})
		return
	}
	sessionID := status.SessionID
	viewerID := uuid.New()

	rm.deps.Logger.Infof("viewer %s joined session %s", viewerID, sessionID)

	caps := device.Capabilities{AudioSink: true, TextSink: true}
	endpoint := websockete.New(conn, caps)

	if err := rm.deps.ViewerRegistry.UpsertViewer(sessionID, device.Viewer{
		SessionID:  sessionID,
		ViewerID:   viewerID,
		Caps:       caps,
		LastActive: time.Now(),
	}); err != nil {
		rm.deps.Logger.Errorf("viewer registration failed: %v", err)
		return
	}
	if err := rm.deps.ViewerRegistry.AttachEndpoint(sessionID, viewerID, endpoint); err != nil {
		rm.deps.Logger.Errorf("viewer endpoint attach failed: %v", err)
		return
	}
	defer func() {
		_ = rm.deps.ViewerRegistry.DetachEndpoint(sessionID, viewerID, endpoint)
		_ = rm.deps.ViewerRegistry.RemoveViewer(sessionID, viewerID)
		rm.deps.Logger.Infof("viewer %s left session %s", viewerID, sessionID)
	}()

	// tell the client where it landed
	_ = endpoint.SendEvent(sessionID, "joined", gin.H{
		"sessionId": sessionID.String(),
		"live":      status.Live,
	})

	rm.handleViewerMessages(conn, endpoint, sessionID)
}

func (rm *RoutesManager) handleViewerMessages(conn *websocket.Conn, endpoint device.Endpoint, sessionID uuid.UUID) {
	for {
		messageType, msgBytes, err := conn.ReadMessage()
		if err != nil {
			rm.deps.Logger.Debugf("viewer ws read error: %v", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		endpoint.Touch()

		var msg ViewerMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			rm.deps.Logger.Debugf("unparseable viewer message: %v", err)
			continue
		}

		switch msg.Type {
		case MessageTypePlaybackEnded:
			// the playback side owns line completion; the sequencer only
			// advances on this signal
			if err := rm.deps.BroadcastService.PlaybackEnded(sessionID); err != nil {
				rm.deps.Logger.Debugf("playback-ended dropped: %v", err)
			}
		case MessageTypePing:
			_ = endpoint.SendEvent(sessionID, "pong", nil)
		default:
			rm.deps.Logger.Debugf("unhandled viewer message type %q", msg.Type)
		}
	}
}
