package websocket

import (
	"context"
	"os"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/dto"
	"github.com/mustafa-mbari/aiwmsa/internal/pkg/logger"
	"github.com/mustafa-mbari/aiwmsa/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const answerTimeout = 2 * time.Minute

// StreamMessage is one frame of the answer stream protocol. Fragments carry
// text deltas; "done" closes the exchange with the full answer envelope;
// "error" reports a failed synthesis.
type StreamMessage struct {
	Type    string              `json:"type"` // "fragment" | "done" | "error"
	Content string              `json:"content,omitempty"`
	Answer  *dto.AnswerResponse `json:"answer,omitempty"`
	Message string              `json:"message,omitempty"`
}

// AnswerStreamHandler upgrades the connection and streams one answer per
// incoming request frame.
type AnswerStreamHandler struct {
	answerService service.IAnswerService
	logger        logger.ILogger
}

func NewAnswerStreamHandler(answerService service.IAnswerService, log logger.ILogger) *AnswerStreamHandler {
	return &AnswerStreamHandler{
		answerService: answerService,
		logger:        log,
	}
}

func (h *AnswerStreamHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/search/v1/stream", h.Handle)
}

// Handle authenticates via the token query param (browsers cannot set
// Authorization headers on websocket handshakes) and upgrades.
func (h *AnswerStreamHandler) Handle(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("AnswerStream", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIdStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.serve(conn, userId)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *AnswerStreamHandler) serve(conn *websocket.Conn, userId uuid.UUID) {
	h.logger.Info("AnswerStream", "Session started", map[string]interface{}{"user_id": userId})
	defer h.logger.Info("AnswerStream", "Session ended", map[string]interface{}{"user_id": userId})

	for {
		var req dto.AnswerRequest
		if err := conn.ReadJSON(&req); err != nil {
			return // client closed or sent garbage
		}

		h.streamOne(conn, userId, &req)
	}
}

func (h *AnswerStreamHandler) streamOne(conn *websocket.Conn, userId uuid.UUID, req *dto.AnswerRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), answerTimeout)
	defer cancel()

	res, err := h.answerService.AnswerStream(ctx, &userId, req, func(fragment string) error {
		return conn.WriteJSON(StreamMessage{Type: "fragment", Content: fragment})
	})
	if err != nil {
		h.logger.Warn("AnswerStream", "Answer failed", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		_ = conn.WriteJSON(StreamMessage{Type: "error", Message: "answer generation failed"})
		return
	}

	_ = conn.WriteJSON(StreamMessage{Type: "done", Answer: res})
}
