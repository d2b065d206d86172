// Package webhook is the inbound adapter: it answers the platform's
// verification handshake and accepts message events. Events are acknowledged
// immediately and processed out-of-band; the transport never waits on the
// pipeline.
package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/m-g-r/relay/dispatch"
	"github.com/m-g-r/relay/util/getsafe"
)

const messageTypeText = "text"

// Pipeline processes one inbound turn end to end.
type Pipeline interface {
	Handle(ctx context.Context, userId string, message string)
}

type Server struct {
	options  Options
	pipeline Pipeline
	pool     *dispatch.Pool
	router   *mux.Router
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")

	if mode != "subscribe" || token != s.options.VerifyToken || len(challenge) == 0 {
		slog.WarnContext(r.Context(), "webhook verification rejected", "mode", mode)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

func (s *Server) receive(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.WarnContext(r.Context(), "failed to decode webhook event", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// ACK regardless of what we do with the event, so the platform does not
	// redeliver while the pipeline runs.
	defer w.WriteHeader(http.StatusOK)

	senderId := getsafe.String(payload, "sender_id")
	messageType := getsafe.String(payload, "message_type")
	text := getsafe.String(payload, "text")

	if messageType != messageTypeText || len(senderId) == 0 || len(text) == 0 {
		slog.DebugContext(r.Context(), "ignoring webhook event", "message_type", messageType)
		return
	}

	err := s.pool.Submit(senderId, func(ctx context.Context) {
		s.pipeline.Handle(ctx, senderId, text)
	})
	if err != nil {
		slog.WarnContext(r.Context(), "failed to dispatch inbound turn", "user_id", senderId, "error", err)
	}
}

func New(pipeline Pipeline, pool *dispatch.Pool, opts ...Option) *Server {
	if pipeline == nil {
		panic("pipeline is required")
	}

	if pool == nil {
		panic("dispatch pool is required")
	}

	options := NewOptions(opts...)

	s := &Server{
		options:  options,
		pipeline: pipeline,
		pool:     pool,
	}

	router := mux.NewRouter()
	router.HandleFunc("/webhook", s.verify).Methods(http.MethodGet)
	router.HandleFunc("/webhook", s.receive).Methods(http.MethodPost)

	s.router = router

	return s
}
