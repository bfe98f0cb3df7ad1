package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bastiangx/nextword/pkg/config"
	"github.com/bastiangx/nextword/pkg/ngram"
	"github.com/bastiangx/nextword/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// StoreStatser exposes n-gram store statistics for the stats action.
type StoreStatser interface {
	Stats() ngram.Stats
}

// Option configures a Server.
type Option func(*Server)

// WithStore includes store statistics in stats responses.
func WithStore(store StoreStatser) Option {
	return func(s *Server) {
		s.store = store
	}
}

// Server handles the IPC for next-word suggestions
type Server struct {
	suggester    suggest.ISuggester
	store        StoreStatser
	config       config.ServerConfig
	decoder      *msgpack.Decoder
	writer       *bufio.Writer
	encoder      *msgpack.Encoder
	requestCount int64
}

// NewServer creates a server that reads requests from r and writes
// responses to w. cfg is expected to be validated already.
func NewServer(suggester suggest.ISuggester, cfg config.ServerConfig, r io.Reader, w io.Writer, opts ...Option) *Server {
	bw := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(bw)
	enc.UseCompactInts(true)

	s := &Server{
		suggester: suggester,
		config:    cfg,
		decoder:   msgpack.NewDecoder(bufio.NewReader(r)),
		writer:    bw,
		encoder:   enc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start announces readiness and serves requests until the input ends.
// It returns nil on a clean EOF.
func (s *Server) Start() error {
	log.Debug("Starting IPC server")

	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debugf("Input closed after %d requests", s.requestCount)
				return nil
			}
			log.Errorf("Reading request stream: %v", err)
			return fmt.Errorf("read request: %w", err)
		}
		if err := s.handleMessage(raw); err != nil {
			return err
		}
	}
}

// handleMessage decodes one framed message and dispatches it. Only write
// failures are returned.
func (s *Server) handleMessage(raw msgpack.RawMessage) error {
	s.requestCount++

	req, err := parseRequest(raw)
	if err != nil {
		log.Debugf("Malformed request: %v", err)
		return s.sendError("", "invalid request: "+err.Error(), 400)
	}

	switch req.Action {
	case "":
		return s.handleSuggest(req)
	case ActionStats:
		return s.handleStats(req)
	case ActionHealth:
		return s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

// handleSuggest validates the request, resolves the limit and returns the
// facade's suggestions with their timing.
func (s *Server) handleSuggest(req Request) error {
	if len(req.Text) > s.config.MaxTextLen {
		log.Debugf("Rejected request %s: text is %d bytes", req.ID, len(req.Text))
		return s.sendError(req.ID, fmt.Sprintf("text exceeds maximum length of %d bytes", s.config.MaxTextLen), 400)
	}

	limit := s.resolveLimit(req.Limit)

	start := time.Now()
	suggestions := s.suggester.Suggest(req.Text, limit)
	elapsed := time.Since(start)

	items := make([]SuggestionItem, len(suggestions))
	for i, sg := range suggestions {
		items[i] = SuggestionItem{Word: sg.Word, Score: sg.Score}
	}
	log.Debugf("Took [ %v ] for %q (limit %d, %d results)", elapsed, req.Text, limit, len(items))

	return s.send(SuggestResponse{
		ID:          req.ID,
		Suggestions: items,
		Count:       len(items),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) resolveLimit(requested *int) int {
	if requested == nil {
		return s.config.DefaultLimit
	}
	if *requested > s.config.MaxLimit {
		return s.config.MaxLimit
	}
	return *requested
}

func (s *Server) handleStats(req Request) error {
	resp := StatsResponse{
		ID:       req.ID,
		Cache:    s.suggester.Stats(),
		Requests: s.requestCount,
	}
	if s.store != nil {
		st := s.store.Stats()
		resp.Store = &st
	}
	return s.send(resp)
}

// send encodes one response and flushes it so the client sees it at once
func (s *Server) send(response any) error {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return fmt.Errorf("encode response: %w", err)
	}
	if err := s.writer.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// parseRequest decodes a message field by field. A limit that is not an
// integer reads as 0, and text that is not a string reads as "" with limit 0,
// so malformed queries get an empty list instead of an error.
func parseRequest(raw msgpack.RawMessage) (Request, error) {
	var fields map[string]any
	if err := msgpack.Unmarshal(raw, &fields); err != nil {
		return Request{}, err
	}

	req := Request{}
	req.ID, _ = fields["id"].(string)
	req.Action, _ = fields["action"].(string)

	if v, present := fields["l"]; present && v != nil {
		limit, ok := toInt(v)
		if !ok {
			log.Debugf("Request %s: limit is %T, using 0", req.ID, v)
		}
		req.Limit = &limit
	}

	switch v := fields["t"].(type) {
	case string:
		req.Text = v
	case nil:
	default:
		log.Debugf("Request %s: text is %T, returning no suggestions", req.ID, v)
		zero := 0
		req.Limit = &zero
	}
	return req, nil
}

// toInt converts any msgpack integer to int. Other types give 0, false.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case int:
		return n, true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case uint:
		return int(n), true
	}
	return 0, false
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
