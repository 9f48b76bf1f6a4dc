package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/adkchat/relay"
	"github.com/adkchat/relay/frame"
)

func (s *Server) handleChatStream(c *gin.Context) {
	var req relay.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body", err))
		return
	}
	if err := req.Validate(); err != nil {
		log.WithError(err).WithField("request_id", c.GetString(ctxRequestID)).
			Warn("chat.request_rejected")
		c.JSON(http.StatusBadRequest, errorBody("validation failed", err))
		return
	}

	preq := s.buildRequest(req)

	if s.toolsEnabled() {
		s.streamWithTools(c, req, preq)
		return
	}
	s.streamPlain(c, req, preq)
}

// buildRequest resolves per-request overrides against configured defaults.
func (s *Server) buildRequest(req relay.ChatRequest) relay.Request {
	temperature := s.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := s.cfg.MaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	out := relay.Request{
		Model:       s.cfg.ModelName,
		Messages:    req.Messages(),
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}
	if s.toolsEnabled() {
		out.Tools = s.registry.Schemas()
	}
	return out
}

// streamPlain relays a single provider turn as NDJSON lines. The first
// frame is pulled before any response bytes are written, so a provider that
// fails up front still gets a proper status code instead of a broken stream.
func (s *Server) streamPlain(c *gin.Context, req relay.ChatRequest, preq relay.Request) {
	ctx := c.Request.Context()

	src, err := s.provider.Stream(ctx, preq)
	if err != nil {
		log.WithError(err).WithField("request_id", c.GetString(ctxRequestID)).
			Warn("chat.upstream_failed")
		c.JSON(http.StatusBadGateway, errorBody("model service unavailable", err))
		return
	}
	stream := frame.NewStream(src, frame.WithConversationID(req.ConversationID))
	defer stream.Close()

	// The framer always yields at least the terminal chunk, so an error on
	// the first pull means the upstream failed before producing anything.
	first, err := stream.Next()
	if err != nil {
		if ctx.Err() != nil {
			log.WithField("request_id", c.GetString(ctxRequestID)).Info("chat.client_disconnected")
			return
		}
		log.WithError(err).WithField("request_id", c.GetString(ctxRequestID)).
			Warn("chat.upstream_failed")
		c.JSON(http.StatusBadGateway, errorBody("model service unavailable", err))
		return
	}

	w := c.Writer
	setStreamHeaders(w)
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	if err := writeChunk(w, enc, first); err != nil {
		log.WithError(err).Info("chat.client_disconnected")
		return
	}
	for {
		chunk, err := stream.Next()
		if err == nil {
			if werr := writeChunk(w, enc, chunk); werr != nil {
				log.WithError(werr).Info("chat.client_disconnected")
				return
			}
			continue
		}
		if err == io.EOF {
			return
		}
		if ctx.Err() != nil {
			log.WithField("request_id", c.GetString(ctxRequestID)).Info("chat.client_disconnected")
			return
		}
		// Bytes are already on the wire; the best we can do is mark the
		// line as an error so the GUI can tell interruption from completion.
		log.WithError(err).WithField("request_id", c.GetString(ctxRequestID)).
			Warn("chat.stream_interrupted")
		_ = writeChunk(w, enc, stream.Framer().ErrorChunk(err))
		return
	}
}

// streamWithTools runs the agent loop, framing each event as a typed chunk.
// Headers are written lazily so a loop that fails before producing anything
// can still return a 502.
func (s *Server) streamWithTools(c *gin.Context, req relay.ChatRequest, preq relay.Request) {
	ctx := c.Request.Context()
	framer := frame.New(frame.Typed(), frame.WithConversationID(req.ConversationID))

	w := c.Writer
	enc := json.NewEncoder(w)
	wrote := false
	var writeErr error
	emit := func(chunk relay.StreamChunk) {
		if writeErr != nil {
			return
		}
		if !wrote {
			setStreamHeaders(w)
			w.WriteHeader(http.StatusOK)
			wrote = true
		}
		writeErr = writeChunk(w, enc, chunk)
	}

	loop := relay.NewLoop(s.provider, s.registry)
	_, err := loop.Run(ctx, preq, relay.WithEventHandler(func(evt relay.Event) {
		if chunk, ok := framer.Event(evt); ok {
			emit(chunk)
		}
	}))

	if writeErr != nil {
		log.WithError(writeErr).Info("chat.client_disconnected")
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			log.WithField("request_id", c.GetString(ctxRequestID)).Info("chat.client_disconnected")
			return
		}
		log.WithError(err).WithField("request_id", c.GetString(ctxRequestID)).
			Warn("chat.loop_failed")
		if !wrote {
			c.JSON(http.StatusBadGateway, errorBody("model service unavailable", err))
			return
		}
		emit(framer.ErrorChunk(err))
		return
	}
	emit(framer.Terminal())
}

func setStreamHeaders(w gin.ResponseWriter) {
	header := w.Header()
	header.Set("Content-Type", "application/x-ndjson")
	header.Set("Cache-Control", "no-cache")
	header.Set("X-Content-Type-Options", "nosniff")
}

// writeChunk writes one NDJSON line and flushes it so the GUI renders
// fragments as they arrive.
func writeChunk(w gin.ResponseWriter, enc *json.Encoder, chunk relay.StreamChunk) error {
	if err := enc.Encode(chunk); err != nil {
		return err
	}
	w.Flush()
	return nil
}
