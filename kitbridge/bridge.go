// Package kitbridge maintains the WebSocket link to the Omniverse Kit
// extension. Kit connects once, announces its scene tools in a kit.register
// notification, and the bridge exposes them through the tool registry as
// proxies. Tool calls travel back over the same socket as JSON-RPC 2.0
// requests correlated by call ID.
package kitbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/adkchat/relay"
	"github.com/adkchat/relay/tools"
)

const (
	defaultCallTimeout = 30 * time.Second

	// writeWait bounds how long a single frame write may block.
	writeWait = 10 * time.Second
)

// envelope is a JSON-RPC 2.0 message in either direction. Requests carry
// Method+ID, notifications Method only, responses ID plus Result or Error.
type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("kit error %d: %s", e.Code, e.Message)
}

type registerParams struct {
	Tools []relay.Tool `json:"tools"`
}

type statusParams struct {
	CallID  string `json:"call_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type callOutcome struct {
	result json.RawMessage
	err    error
}

// session is the state of one Kit connection: the socket and the tool names
// it registered.
type session struct {
	conn  *websocket.Conn
	names []string
}

// Manager owns the single live Kit connection and the calls in flight on it.
type Manager struct {
	registry *tools.Registry
	timeout  time.Duration

	mu      sync.Mutex
	cur     *session
	pending map[string]chan callOutcome

	writeMu sync.Mutex
}

// Option configures a [Manager].
type Option func(*Manager)

// WithCallTimeout sets how long CallTool waits for Kit to answer.
func WithCallTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewManager creates a Manager that registers Kit tools into registry.
func NewManager(registry *tools.Registry, opts ...Option) *Manager {
	m := &Manager{
		registry: registry,
		timeout:  defaultCallTimeout,
		pending:  make(map[string]chan callOutcome),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Connected reports whether a Kit connection is live.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur != nil
}

// Serve takes ownership of conn and blocks until it closes. Only one Kit
// connection is live at a time; a newer one replaces the old, failing its
// in-flight calls.
func (m *Manager) Serve(conn *websocket.Conn) {
	sess := &session{conn: conn}
	m.attach(sess)
	defer m.detach(sess)

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("kitbridge.read_failed")
			}
			return
		}
		m.dispatch(sess, &env)
	}
}

func (m *Manager) attach(sess *session) {
	m.mu.Lock()
	old := m.cur
	m.cur = sess
	if old != nil {
		m.failPendingLocked(relay.ErrKitDisconnected)
		m.unregisterLocked(old)
	}
	m.mu.Unlock()

	if old != nil {
		old.conn.Close()
		log.Warn("kitbridge.replaced")
	}
	log.Info("kitbridge.connected")
}

func (m *Manager) detach(sess *session) {
	m.mu.Lock()
	if m.cur != sess {
		// Already replaced by a newer connection.
		m.mu.Unlock()
		return
	}
	m.cur = nil
	m.failPendingLocked(relay.ErrKitDisconnected)
	m.unregisterLocked(sess)
	m.mu.Unlock()
	log.Info("kitbridge.disconnected")
}

func (m *Manager) failPendingLocked(err error) {
	for id, ch := range m.pending {
		ch <- callOutcome{err: err}
		delete(m.pending, id)
	}
}

func (m *Manager) unregisterLocked(sess *session) {
	for _, name := range sess.names {
		if err := m.registry.Unregister(name); err != nil {
			log.WithError(err).WithField("tool", name).Debug("kitbridge.unregister_failed")
		}
	}
	sess.names = nil
}

func (m *Manager) dispatch(sess *session, env *envelope) {
	switch {
	case env.Method == "kit.register":
		m.handleRegister(sess, env.Params)
	case env.Method == "tool.status":
		var p statusParams
		if err := json.Unmarshal(env.Params, &p); err == nil {
			log.WithFields(log.Fields{
				"call_id": p.CallID,
				"status":  p.Status,
			}).Debug("kitbridge.tool_status")
		}
	case env.Method != "":
		log.WithField("method", env.Method).Debug("kitbridge.unknown_method")
	case env.ID != "":
		m.deliver(env)
	}
}

// handleRegister installs a registry proxy for every announced tool. The
// proxy forwards the call over the bridge and returns the raw JSON result.
func (m *Manager) handleRegister(sess *session, params json.RawMessage) {
	var p registerParams
	if err := json.Unmarshal(params, &p); err != nil {
		log.WithError(err).Warn("kitbridge.bad_register")
		return
	}

	var registered []string
	for _, schema := range p.Tools {
		name := schema.Name
		fn := func(ctx context.Context, args json.RawMessage) (*relay.ToolResult, error) {
			result, err := m.CallTool(ctx, name, args)
			if err != nil {
				return nil, err
			}
			return relay.TextResult(string(result), false), nil
		}
		if err := m.registry.Register(schema, fn); err != nil {
			log.WithError(err).WithField("tool", name).Warn("kitbridge.register_failed")
			continue
		}
		registered = append(registered, name)
	}

	m.mu.Lock()
	if m.cur == sess {
		sess.names = append(sess.names, registered...)
		m.mu.Unlock()
		log.WithField("tools", len(registered)).Info("kitbridge.registered")
		return
	}
	m.mu.Unlock()

	// Lost the connection while registering; roll back.
	for _, name := range registered {
		_ = m.registry.Unregister(name)
	}
}

func (m *Manager) deliver(env *envelope) {
	m.mu.Lock()
	ch, ok := m.pending[env.ID]
	if ok {
		delete(m.pending, env.ID)
	}
	m.mu.Unlock()

	if !ok {
		// Response for a call that timed out or was cancelled.
		log.WithField("id", env.ID).Debug("kitbridge.orphan_response")
		return
	}
	if env.Error != nil {
		ch <- callOutcome{err: env.Error}
		return
	}
	ch <- callOutcome{result: env.Result}
}

// CallTool invokes a scene tool over the bridge and waits for its response.
func (m *Manager) CallTool(ctx context.Context, name string, params json.RawMessage) (json.RawMessage, error) {
	m.mu.Lock()
	if m.cur == nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("kitbridge: %s: %w", name, relay.ErrKitDisconnected)
	}
	conn := m.cur.conn
	id := "call-" + uuid.NewString()[:8]
	ch := make(chan callOutcome, 1)
	m.pending[id] = ch
	m.mu.Unlock()

	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	req := envelope{JSONRPC: "2.0", ID: id, Method: name, Params: params}
	if err := m.writeJSON(conn, &req); err != nil {
		m.abandon(id)
		return nil, fmt.Errorf("kitbridge: send %s: %w", name, err)
	}

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()
	select {
	case out := <-ch:
		if out.err != nil {
			return nil, fmt.Errorf("kitbridge: %s: %w", name, out.err)
		}
		return out.result, nil
	case <-ctx.Done():
		m.abandon(id)
		return nil, ctx.Err()
	case <-timer.C:
		m.abandon(id)
		return nil, fmt.Errorf("kitbridge: %s timed out after %s", name, m.timeout)
	}
}

func (m *Manager) abandon(id string) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

// writeJSON serializes writes; gorilla connections allow one writer at a time.
func (m *Manager) writeJSON(conn *websocket.Conn, v any) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
