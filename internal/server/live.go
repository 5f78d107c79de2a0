package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"hkm-site/internal/calendar"
	"hkm-site/internal/domain/data"
	"hkm-site/internal/pagesync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

const (
	writeTimeout   = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = pongWait * 9 / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

type liveMessage struct {
	Type   string            `json:"type"`
	Values map[string]string `json:"values,omitempty"`
	Title  string            `json:"title,omitempty"`
	Grid   string            `json:"grid,omitempty"`
}

type clientMessage struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

func isCalendarPage(pageID string) bool {
	return pageID == data.PageEvents || pageID == data.PageCalendar
}

type liveSession struct {
	id     string
	pageID string
	server *Server
	conn   *websocket.Conn
	send   chan liveMessage

	events []data.Event
	nav    *calendar.Navigator
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	pageID := mux.Vars(r)["page"]

	doc, err := s.loadPage(pageFile(mux.Vars(r)))
	if errors.Is(err, errPageNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Errorw("Failed to load page for live session", "page", pageID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("Websocket upgrade failed", "page", pageID, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	session := &liveSession{
		id:     ulid.Make().String(),
		pageID: pageID,
		server: s,
		conn:   conn,
		send:   make(chan liveMessage, sendBuffer),
	}

	if isCalendarPage(pageID) && s.sync.Events != nil {
		session.events = s.sync.Events.Resolve(ctx)
		session.nav = calendar.NewNavigator(s.now, s.sync.Renderer.Location())
	}

	sub := s.sync.Live(ctx, pageID, pagesync.BindingPaths(doc), session.push)
	if sub != nil {
		defer sub.Close()
	}

	s.logger.Debugw("Live session opened", "session", session.id, "page", pageID, "subscribed", sub != nil)

	go session.writeLoop(ctx)
	session.readLoop()

	s.logger.Debugw("Live session closed", "session", session.id, "page", pageID)
}

// push drops the message when the client is not keeping up. Every bindings
// message is a full patch, so the next one repairs the gap.
func (l *liveSession) push(patch pagesync.Patch) {
	l.enqueue(liveMessage{Type: "bindings", Values: patch.Values})
}

func (l *liveSession) enqueue(msg liveMessage) {
	select {
	case l.send <- msg:
	default:
		l.server.logger.Warnw("Live session send buffer full, dropping message", "session", l.id, "type", msg.Type)
	}
}

func (l *liveSession) readLoop() {
	defer l.conn.Close()

	l.conn.SetReadLimit(maxMessageSize)
	_ = l.conn.SetReadDeadline(time.Now().Add(pongWait))
	l.conn.SetPongHandler(func(string) error {
		return l.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := l.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.server.logger.Debugw("Live session read failed", "session", l.id, "error", err)
			}
			return
		}

		if msg.Type != "navigate" || l.nav == nil {
			continue
		}

		displayed, ok := l.nav.Apply(msg.Action)
		if !ok {
			l.server.logger.Debugw("Unknown calendar action", "session", l.id, "action", msg.Action)
			continue
		}

		view, err := l.server.sync.RenderCalendar(l.events, displayed)
		if err != nil {
			l.server.logger.Errorw("Failed to render calendar", "session", l.id, "error", err)
			continue
		}

		l.enqueue(liveMessage{Type: "calendar", Title: view.Title, Grid: view.Grid})
	}
}

func (l *liveSession) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-l.send:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := l.conn.WriteJSON(msg); err != nil {
				l.server.logger.Debugw("Live session write failed", "session", l.id, "error", err)
				_ = l.conn.Close()
				return
			}
		case <-ticker.C:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := l.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = l.conn.Close()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
