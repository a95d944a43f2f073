package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"mapsmith.dev/internal/protocol"
	"mapsmith.dev/internal/sim/geom"
	"mapsmith.dev/internal/sim/heightmap"
	"mapsmith.dev/internal/sim/mapgen"
)

const (
	MaxSide      = 8192
	defaultQueue = 4
)

type Config struct {
	// Catalog resolves template names; nil means stock templates only.
	Catalog     *heightmap.Catalog
	TraceCap    int
	ContourStep int

	// QueueSize bounds pending requests per connection. Requests beyond it get E_BUSY.
	QueueSize int

	// OnMap, if set, runs after each successful generation, before the MAP reply is sent.
	OnMap func(*mapgen.Map)
}

// Server answers GENERATE requests over a websocket. Each connection
// processes its requests one at a time, in arrival order.
type Server struct {
	cfg Config
	log *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(cfg Config, logger *log.Logger) *Server {
	if cfg.Catalog == nil {
		cfg.Catalog = heightmap.NewCatalog()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueue
	}
	s := &Server{
		cfg: cfg,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan []byte, s.cfg.QueueSize+1)
		jobs := make(chan protocol.GenerateMsg, s.cfg.QueueSize)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Worker goroutine: one generation at a time.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case req := <-jobs:
					s.send(ctx, out, s.generate(ctx, req))
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			req, code, reason := decodeGenerate(msg)
			if code != "" {
				s.send(ctx, out, errorMsg(req.RequestID, code, reason))
				continue
			}
			select {
			case jobs <- req:
			default:
				s.send(ctx, out, errorMsg(req.RequestID, protocol.ErrBusy, "too many pending requests"))
			}
		}
	}
}

func decodeGenerate(msg []byte) (protocol.GenerateMsg, string, string) {
	var req protocol.GenerateMsg
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return req, protocol.ErrProtoBadRequest, "malformed json"
	}
	if base.Type != protocol.TypeGenerate {
		return req, protocol.ErrProtoBadRequest, fmt.Sprintf("unexpected message type %q", base.Type)
	}
	if err := json.Unmarshal(msg, &req); err != nil {
		return req, protocol.ErrProtoBadRequest, "malformed GENERATE"
	}
	if req.ProtocolVersion != protocol.Version {
		return req, protocol.ErrProtoBadRequest, "bad protocol_version"
	}
	if req.Width > MaxSide || req.Height > MaxSide {
		return req, protocol.ErrBadRequest, fmt.Sprintf("map sides are limited to %d", MaxSide)
	}
	return req, "", ""
}

func (s *Server) generate(ctx context.Context, req protocol.GenerateMsg) any {
	start := time.Now()
	m, err := mapgen.Generate(ctx, mapgen.Config{
		Size:        geom.Size{Width: req.Width, Height: req.Height},
		Density:     req.Density,
		Template:    req.Template,
		Seed:        req.Seed,
		TraceCap:    s.cfg.TraceCap,
		ContourStep: s.cfg.ContourStep,
		Catalog:     s.cfg.Catalog,
	})
	switch {
	case errors.Is(err, mapgen.ErrInvalidConfig), errors.Is(err, heightmap.ErrUnknownTemplate):
		return errorMsg(req.RequestID, protocol.ErrBadRequest, err.Error())
	case err != nil:
		s.log.Printf("generate %s: %v", req.RequestID, err)
		return errorMsg(req.RequestID, protocol.ErrInternal, "generation failed")
	}
	s.log.Printf("generated %s template=%s seed=%d cells=%d diagnostics=%d in %s",
		req.RequestID, m.Template, req.Seed, m.Grid.NumCells(), len(m.Diagnostics), time.Since(start).Round(time.Millisecond))
	if s.cfg.OnMap != nil {
		s.cfg.OnMap(m)
	}
	return MapMessage(req.RequestID, m, req.Polygons)
}

func (s *Server) send(ctx context.Context, out chan<- []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Printf("marshal reply: %v", err)
		return
	}
	select {
	case out <- b:
	case <-ctx.Done():
	}
}

func errorMsg(reqID, code, message string) protocol.ErrorMsg {
	return protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		RequestID:       reqID,
		Code:            code,
		Message:         message,
	}
}
