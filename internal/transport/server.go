package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/parleyvoice/parley/internal/logging"
	"github.com/parleyvoice/parley/pkg/ai/stt"
	"github.com/parleyvoice/parley/pkg/audio"
	"github.com/parleyvoice/parley/pkg/eot"
	"github.com/parleyvoice/parley/pkg/responder"
	"github.com/parleyvoice/parley/pkg/session"
	"github.com/parleyvoice/parley/pkg/turn"
)

// Server accepts websocket connections and runs one session per client.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

// Config holds the collaborators shared by all sessions. The oracle,
// transcriber, and responder are stateless and safely invoked concurrently
// by many sessions.
type Config struct {
	Oracle      eot.Oracle
	Transcriber stt.Transcriber
	Responder   responder.Responder

	ForceAfter   time.Duration
	PollInterval time.Duration
}

// NewServer creates a websocket session server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Oracle == nil || cfg.Transcriber == nil || cfg.Responder == nil {
		return nil, fmt.Errorf("oracle, transcriber, and responder are required")
	}
	if cfg.ForceAfter <= 0 {
		return nil, fmt.Errorf("force-after timeout must be positive")
	}
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  32 * 1024,
			WriteBufferSize: 32 * 1024,
			// Browser clients connect from app origins; access control
			// is the reverse proxy's job.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: logging.Named("transport"),
	}, nil
}

// ServeHTTP upgrades the connection and drives the session until the
// client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()

	ctrl, err := turn.NewController(turn.Config{
		Oracle:      s.cfg.Oracle,
		Transcriber: s.cfg.Transcriber,
		Responder:   s.cfg.Responder,
		Notifier:    newConnNotifier(conn),
		ForceAfter:  s.cfg.ForceAfter,
	})
	if err != nil {
		s.log.Errorw("controller setup failed", "error", err)
		return
	}

	sess, err := session.New(session.Config{
		Controller:   ctrl,
		PollInterval: s.cfg.PollInterval,
	})
	if err != nil {
		s.log.Errorw("session setup failed", "error", err)
		return
	}

	log := s.log.With("session_id", sess.ID(), "remote", r.RemoteAddr)
	log.Infow("client connected")

	// Cancelling the context abandons all in-flight oracle, transcriber,
	// and responder calls for this session.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sess.Run(ctx)
	}()

	s.readLoop(conn, sess, log)

	cancel()
	<-done
	log.Infow("client disconnected")
}

// readLoop consumes inbound frames until the connection drops. Binary
// frames are audio segments; anything else is ignored.
func (s *Server) readLoop(conn *websocket.Conn, sess *session.Session, log *zap.SugaredLogger) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnw("connection read failed", "error", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			log.Debugw("ignoring non-binary frame", "type", msgType)
			continue
		}

		seg, err := audio.NewSegment(data, time.Now())
		if err != nil {
			// Malformed segments are silently discarded; no state transition.
			log.Debugw("discarding malformed segment", "error", err, "bytes", len(data))
			continue
		}
		sess.Offer(seg)
	}
}
