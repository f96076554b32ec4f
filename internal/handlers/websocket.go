package handlers

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/auth"
	"github.com/habithome/habithome-api/internal/middleware"
	"github.com/habithome/habithome-api/internal/resp"
	"github.com/sirupsen/logrus"
)

// Event types sent over WebSocket
const (
	EventMemberJoined  = "member_joined"
	EventMemberLeft    = "member_left"
	EventTaskCreated   = "task_created"
	EventTaskUpdated   = "task_updated"
	EventTaskCompleted = "task_completed"
	EventTaskDeleted   = "task_deleted"
)

// WSEvent is the JSON message sent to connected clients
type WSEvent struct {
	Type     string      `json:"type"`
	FamilyID string      `json:"familyId"`
	UserID   string      `json:"userId"`
	Data     interface{} `json:"data,omitempty"`
}

type messageWriter interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// connection wraps a websocket connection with its user ID
type connection struct {
	mu     sync.Mutex // one writer at a time
	conn   messageWriter
	userID uuid.UUID
}

func (c *connection) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *connection) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// Hub manages WebSocket connections per family
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*connection]bool // familyID -> set of connections
	log   logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		rooms: make(map[uuid.UUID]map[*connection]bool),
		log:   log,
	}
}

// register adds a connection to a family room
func (h *Hub) register(familyID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[familyID] == nil {
		h.rooms[familyID] = make(map[*connection]bool)
	}
	h.rooms[familyID][conn] = true
	h.log.WithFields(logrus.Fields{"user_id": conn.userID, "family_id": familyID, "total": len(h.rooms[familyID])}).Debug("WS register")
}

// unregister removes a connection from a family room
func (h *Hub) unregister(familyID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[familyID]; ok {
		delete(conns, conn)
		h.log.WithFields(logrus.Fields{"user_id": conn.userID, "family_id": familyID, "remaining": len(conns)}).Debug("WS unregister")
		if len(conns) == 0 {
			delete(h.rooms, familyID)
		}
	}
}

// Connections reports how many sockets are open for a family.
func (h *Hub) Connections(familyID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[familyID])
}

// Disconnect closes and drops every socket userID holds in a family room.
// The read loop of each socket then exits on its own.
func (h *Hub) Disconnect(familyID, userID uuid.UUID) {
	var dropped []*connection
	h.mu.Lock()
	if conns, ok := h.rooms[familyID]; ok {
		for c := range conns {
			if c.userID == userID {
				delete(conns, c)
				dropped = append(dropped, c)
			}
		}
		if len(conns) == 0 {
			delete(h.rooms, familyID)
		}
	}
	h.mu.Unlock()

	for _, c := range dropped {
		if err := c.close(); err != nil {
			h.log.WithError(err).WithField("user_id", userID).Debug("WS close error")
		}
	}
}

// Broadcast sends an event to all connections in a family room, excluding the sender
func (h *Hub) Broadcast(familyID uuid.UUID, excludeUserID uuid.UUID, event WSEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.rooms[familyID]
	if !ok {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Warn("WS broadcast marshal error")
		return
	}

	for c := range conns {
		// Don't send to the user who triggered the event
		if c.userID == excludeUserID {
			continue
		}
		if err := c.write(msg); err != nil {
			h.log.WithError(err).WithField("user_id", c.userID).Warn("WS write error")
		}
	}
}

// WebSocketUpgrade checks the upgrade request, the access token and family
// membership before the socket is accepted.
func (h *Handler) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		locale := resp.Locale(c)

		// Authenticate via query param: ?token=<jwt>
		tokenString := c.Query("token")
		if tokenString == "" {
			// Also check Authorization header for non-browser clients
			authHeader := c.Get(fiber.HeaderAuthorization)
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}
		if tokenString == "" {
			return resp.Fail(c, apperr.Unauthenticated(apperr.KeyMissingAuthHeader), locale)
		}

		claims := h.tokens.VerifyAccessToken(tokenString)
		if claims == nil {
			return resp.Fail(c, apperr.Unauthenticated(apperr.KeyInvalidToken), locale)
		}

		user, err := h.users.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return resp.Fail(c, apperr.Unauthenticated(apperr.KeyUserNotFound), locale)
			}
			return resp.Fail(c, err, locale)
		}

		familyID, err := paramUUID(c, "id")
		if err != nil {
			return resp.Fail(c, err, locale)
		}
		member, err := h.families.IsMember(c.UserContext(), user.ID, familyID)
		if err != nil {
			return resp.Fail(c, err, locale)
		}
		if !member {
			return resp.Fail(c, apperr.Forbidden(apperr.KeyNotFamilyMember), locale)
		}

		middleware.SetIdentity(c, auth.Identity{ID: user.ID, Email: user.Email, Name: user.Name})
		return c.Next()
	}
}

// HandleWebSocket keeps a family socket open until the client disconnects.
func (h *Handler) HandleWebSocket(c *websocket.Conn) {
	familyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		c.Close()
		return
	}

	id, ok := c.Locals(middleware.LocalIdentity).(auth.Identity)
	if !ok {
		c.Close()
		return
	}

	conn := &connection{conn: c, userID: id.ID}
	h.hub.register(familyID, conn)
	defer h.hub.unregister(familyID, conn)

	// Keep connection alive; clients only send pings/keepalives
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
