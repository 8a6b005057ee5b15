package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/domain/event"
	"github.com/Alex-SA1/Efficient-Study-Platform/errors"
	"github.com/Alex-SA1/Efficient-Study-Platform/services"
)

var (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = int64(4096)
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inboundFrame is what the chat page sends over the socket.
type inboundFrame struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// outboundFrame is one broadcast message as a recipient's browser renders
// it: the instant already converted to that recipient's timezone.
type outboundFrame struct {
	Message           string `json:"message"`
	Sender            string `json:"sender"`
	Datetime          string `json:"datetime"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// socketClient is one live websocket connection: a read pump feeding the
// group's serialized path and a write pump draining this connection's sink.
type socketClient struct {
	log       *slog.Logger
	conn      *websocket.Conn
	sink      *Sink
	chat      services.IChatService
	group     domain.GroupID
	username  string
	avatarURL string
	viewerLoc *time.Location
	done      chan struct{}
}

// handleSocket upgrades an authenticated, authorized member's connection and
// binds it to the session group. Disconnect counts as leaving the session.
func (h *Handler) handleSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := h.issuer.IdentityFromRequest(r)
	if err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	rawCode := r.PathValue("code")
	if !domain.ValidSessionCode(rawCode) {
		http.Error(w, "invalid session code", http.StatusUnprocessableEntity)
		return
	}
	code := domain.SessionCode(rawCode)

	if err := h.sessions.Authorize(code, identity.Username); err != nil {
		http.Error(w, "not a member of this session", errors.MapToHTTPStatus(err))
		return
	}

	profile, err := h.users.GetProfile(identity.Username)
	if err != nil {
		http.Error(w, "profile lookup failed", errors.MapToHTTPStatus(err))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "user", identity.Username, "error", err)
		return
	}

	connID := uuid.NewString()
	sink := NewSink(h.bufferSize)
	group := code.Group()
	h.hub.Bind(connID, group, sink)
	h.log.Info("Connection bound to study session",
		"conn_id", connID, "user", identity.Username, "code", rawCode)

	client := &socketClient{
		log:       h.log,
		conn:      conn,
		sink:      sink,
		chat:      h.chat,
		group:     group,
		username:  identity.Username,
		avatarURL: profile.Avatar(),
		viewerLoc: identity.Location(),
		done:      make(chan struct{}),
	}

	go client.writePump()
	client.readPump()

	h.hub.Release(connID, group)
	// A dropped socket is a leave: the browser holds exactly one connection
	// per session, and an explicit leave racing this path is idempotent.
	if err := h.sessions.Leave(code, identity.Username); err != nil {
		h.log.Error("Leave on disconnect failed",
			"user", identity.Username, "code", rawCode, "error", err)
	}
	h.log.Info("Connection released", "conn_id", connID, "user", identity.Username)
}

func (c *socketClient) readPump() {
	defer func() {
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Websocket read failed", "user", c.username, "error", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.log.Warn("Discarding malformed frame", "user", c.username, "error", err)
			continue
		}
		if err := validate.Struct(frame); err != nil {
			continue
		}

		err = c.chat.PostMessage(domain.PostMessageCommand{
			Group:     c.group,
			Author:    c.username,
			AvatarURL: c.avatarURL,
			Content:   frame.Message,
		})
		if err != nil {
			// The session died under us; the close frame tells the browser
			// to stop instead of queueing into a dead group.
			c.log.Warn("Post rejected, closing connection", "user", c.username, "error", err)
			return
		}
	}
}

func (c *socketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case evt := <-c.sink.Events():
			posted, ok := evt.(event.MessagePosted)
			if !ok {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(c.render(posted)); err != nil {
				c.log.Warn("Websocket write failed", "user", c.username, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// render converts the stored UTC instant into this viewer's timezone. Zone
// conversion is presentation only; every connection sees the same instant.
func (c *socketClient) render(e event.MessagePosted) outboundFrame {
	return outboundFrame{
		Message:           e.Content,
		Sender:            e.Author,
		Datetime:          e.At.In(c.viewerLoc).Format(time.RFC3339),
		ProfilePictureURL: e.AvatarURL,
	}
}
