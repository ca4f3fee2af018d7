// Package realtime maintains the single persistent websocket connection to
// the Tabletools backend. It reconnects with bounded retry on drops and
// feeds inbound events into the event router, so the rest of the process
// can send and receive named messages regardless of connection churn.
package realtime

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/tabletools/core/config"
	"github.com/tabletools/core/errors"
	"github.com/tabletools/core/logging"
	"github.com/tabletools/core/pkg/events"
	"github.com/tabletools/core/pkg/models"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// IdentityFunc returns the locally cached user identity used for the
// join:user handshake. ok is false when no identity is cached; the join is
// then silently skipped.
type IdentityFunc func() (userID, restaurantID string, ok bool)

// Options configures a Conn beyond what backend config provides.
type Options struct {
	// Identity supplies the cached identity for room joins. Optional.
	Identity IdentityFunc
	// Mute silences matching inbound events before dispatch. Optional.
	Mute *events.MuteFilter
}

const writeTimeout = 10 * time.Second

// Conn owns the persistent connection. All methods are safe for
// concurrent use; the process shares one instance.
type Conn struct {
	cfg    config.BackendConfig
	router *events.Router
	opts   Options
	logger *logrus.Entry

	mu           sync.Mutex
	ws           *websocket.Conn
	state        State
	manualClose  bool
	redialCancel context.CancelFunc
	mute         *events.MuteFilter
	nextListener uint64
	connChange   map[uint64]func(bool)
	failed       map[uint64]func(error)

	writeMu sync.Mutex

	wg sync.WaitGroup
}

// New creates a connection manager. It does not dial; call Connect.
func New(cfg config.BackendConfig, router *events.Router, opts Options) *Conn {
	return &Conn{
		cfg:        cfg,
		router:     router,
		opts:       opts,
		mute:       opts.Mute,
		logger:     logging.NewLogger("realtime"),
		connChange: make(map[uint64]func(bool)),
		failed:     make(map[uint64]func(error)),
	}
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetMuteFilter replaces the mute filter. Used by config live reload.
func (c *Conn) SetMuteFilter(f *events.MuteFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mute = f
}

// Connect dials the backend. It is idempotent: a no-op when already
// connected or connecting. On failure it retries up to MaxRetries with
// growing backoff, then returns a retries-exhausted error and stays
// disconnected until the caller asks again.
func (c *Conn) Connect(ctx context.Context) error {
	if c.cfg.URL == "" {
		return errors.EndpointMissing()
	}

	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.manualClose = false
	c.mu.Unlock()

	if err := c.dialWithRetry(ctx); err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return err
	}
	return nil
}

// Disconnect tears the connection down and clears all handler
// registrations; callers must re-subscribe after a manual Reconnect. It
// also stops any reconnection cycle that was running when it was called.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	connected := c.state == StateConnected
	c.mu.Unlock()
	if connected {
		c.leaveRooms()
	}

	c.mu.Lock()
	c.manualClose = true
	if c.redialCancel != nil {
		c.redialCancel()
		c.redialCancel = nil
	}
	ws := c.ws
	c.ws = nil
	wasConnected := c.state == StateConnected
	c.state = StateDisconnected
	c.mu.Unlock()

	if ws != nil {
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
		ws.Close()
	}
	c.wg.Wait()

	c.router.Reset()
	if wasConnected {
		c.notifyConnChange(false)
	}
}

// Reconnect tears down and re-establishes the connection. Handler
// registrations do not survive; re-subscribe afterwards.
func (c *Conn) Reconnect(ctx context.Context) error {
	c.Disconnect()
	return c.Connect(ctx)
}

// On registers a handler for a named inbound event. The returned
// subscription must be cancelled on teardown.
func (c *Conn) On(event string, handler events.Handler) *events.Subscription {
	return c.router.Subscribe(event, handler)
}

// Off removes all handlers for the event; inbound messages of that name
// are dropped until somebody subscribes again.
func (c *Conn) Off(event string) {
	c.router.UnsubscribeAll(event)
}

// Emit sends a named message to the backend. When disconnected the
// message is dropped and a non-fatal error returned; there is no queueing.
func (c *Conn) Emit(event string, payload interface{}) error {
	c.mu.Lock()
	ws := c.ws
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || ws == nil {
		c.logger.WithField("event", event).Warn("Dropping emit while disconnected")
		return errors.EmitOffline(event)
	}

	msg, err := NewMessage(event, payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to encode event payload").
			WithDetail("event", event)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteJSON(msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeConnectFailed, "failed to send event").
			WithDetail("event", event)
	}
	return nil
}

// OnConnectionChange registers a listener invoked with a boolean on every
// transition between connected and disconnected. It returns an
// unsubscribe function.
func (c *Conn) OnConnectionChange(cb func(connected bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextListener++
	id := c.nextListener
	c.connChange[id] = cb
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.connChange, id)
	}
}

// OnReconnectFailed registers a listener invoked once when a reconnection
// cycle exhausts its retries. The connection stays down afterwards; the
// UI keeps operating in a degraded offline mode.
func (c *Conn) OnReconnectFailed(cb func(err error)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextListener++
	id := c.nextListener
	c.failed[id] = cb
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.failed, id)
	}
}

// dialWithRetry attempts the websocket handshake up to MaxRetries times.
// The caller has already moved the state to connecting.
func (c *Conn) dialWithRetry(ctx context.Context) error {
	endpoint, err := wsURL(c.cfg.URL)
	if err != nil {
		return err
	}

	maxRetries := c.cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = config.DefaultMaxRetries
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.ConnectTimeout.Std(),
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		c.mu.Lock()
		closed := c.manualClose
		c.mu.Unlock()
		if closed {
			return errors.Wrap(context.Canceled, errors.ErrCodeConnectFailed, "connect cancelled")
		}

		if attempt > 1 {
			delay := backoffDelay(attempt-1, c.cfg.ReconnectDelay.Std(), c.cfg.ReconnectDelayMax.Std())
			if err := sleepWithContext(ctx, delay); err != nil {
				return errors.Wrap(err, errors.ErrCodeConnectFailed, "connect cancelled")
			}
		}

		ws, _, err := dialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			lastErr = err
			c.logger.WithError(err).WithFields(logrus.Fields{
				"endpoint": endpoint,
				"attempt":  attempt,
			}).Warn("Connection attempt failed")
			continue
		}

		c.establish(ws)
		return nil
	}

	exhausted := errors.RetriesExhausted(endpoint, maxRetries)
	if lastErr != nil {
		exhausted = exhausted.WithDetail("lastError", lastErr.Error())
	}
	c.mu.Lock()
	closed := c.manualClose
	c.mu.Unlock()
	if !closed {
		c.notifyFailed(exhausted)
	}
	return exhausted
}

// establish installs a freshly dialed websocket, starts its pumps and
// performs the room-join side effects.
func (c *Conn) establish(ws *websocket.Conn) {
	done := make(chan struct{})

	ws.SetReadDeadline(time.Now().Add(c.cfg.PingTimeout.Std()))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(c.cfg.PingTimeout.Std()))
		return nil
	})

	c.mu.Lock()
	if c.manualClose {
		// Disconnect raced the dial; drop the fresh connection.
		c.mu.Unlock()
		ws.Close()
		return
	}
	c.ws = ws
	c.state = StateConnected
	c.mu.Unlock()

	c.logger.WithField("endpoint", ws.RemoteAddr().String()).Info("Connected")
	c.notifyConnChange(true)

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		c.readPump(ws, done)
	}()
	go func() {
		defer c.wg.Done()
		c.pingLoop(ws, done)
	}()

	c.joinRooms()
}

// joinRooms emits the join messages so the backend routes user and
// restaurant scoped events to this connection. Best-effort: skipped
// silently when no identity is cached.
func (c *Conn) joinRooms() {
	if c.opts.Identity != nil {
		if userID, restaurantID, ok := c.opts.Identity(); ok {
			payload := models.JoinUser{UserID: userID, RestaurantID: restaurantID}
			if err := c.Emit(models.EventJoinUser, payload); err != nil {
				c.logger.WithError(err).Debug("join:user failed")
			}
		}
	}
	if c.cfg.RestaurantID != "" {
		payload := models.JoinRestaurant{RestaurantID: c.cfg.RestaurantID}
		if err := c.Emit(models.EventJoinRestaurant, payload); err != nil {
			c.logger.WithError(err).Debug("join:restaurant failed")
		}
	}
}

// leaveRooms emits the leave messages before a manual teardown so the
// backend stops routing scoped events at once instead of waiting for the
// socket close. Best-effort, like joinRooms.
func (c *Conn) leaveRooms() {
	if c.opts.Identity != nil {
		if userID, restaurantID, ok := c.opts.Identity(); ok {
			payload := models.JoinUser{UserID: userID, RestaurantID: restaurantID}
			if err := c.Emit(models.EventLeaveUser, payload); err != nil {
				c.logger.WithError(err).Debug("leave:user failed")
			}
		}
	}
	if c.cfg.RestaurantID != "" {
		payload := models.JoinRestaurant{RestaurantID: c.cfg.RestaurantID}
		if err := c.Emit(models.EventLeaveRestaurant, payload); err != nil {
			c.logger.WithError(err).Debug("leave:restaurant failed")
		}
	}
}

func (c *Conn) readPump(ws *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			c.handleDrop(ws, err)
			return
		}
		if msg.Event == "" {
			continue
		}

		c.mu.Lock()
		mute := c.mute
		c.mu.Unlock()
		if mute.Muted(msg.Event) {
			c.logger.WithField("event", msg.Event).Debug("Muted event dropped")
			continue
		}

		c.router.Dispatch(msg.Event, msg.Data)
	}
}

func (c *Conn) pingLoop(ws *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingInterval.Std())
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			c.writeMu.Unlock()
			if err != nil {
				c.logger.WithError(err).Debug("Ping failed")
				return
			}
		}
	}
}

// handleDrop reacts to a read failure: a manual Disconnect ends quietly,
// anything else starts a reconnection cycle.
func (c *Conn) handleDrop(ws *websocket.Conn, err error) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.manualClose || c.ws != ws {
		c.mu.Unlock()
		cancel()
		return
	}
	c.ws = nil
	c.state = StateConnecting
	c.redialCancel = cancel
	c.mu.Unlock()

	ws.Close()
	c.logger.WithError(err).Warn("Connection lost, reconnecting")
	c.notifyConnChange(false)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		if err := c.dialWithRetry(ctx); err != nil {
			c.mu.Lock()
			manual := c.manualClose
			if !manual {
				c.state = StateDisconnected
			}
			c.mu.Unlock()
			if !manual {
				c.logger.WithError(err).Error("Reconnection failed")
			}
		}
	}()
}

func (c *Conn) notifyConnChange(connected bool) {
	c.mu.Lock()
	cbs := make([]func(bool), 0, len(c.connChange))
	for _, cb := range c.connChange {
		cbs = append(cbs, cb)
	}
	c.mu.Unlock()
	for _, cb := range cbs {
		cb(connected)
	}
}

func (c *Conn) notifyFailed(err error) {
	c.mu.Lock()
	cbs := make([]func(error), 0, len(c.failed))
	for _, cb := range c.failed {
		cbs = append(cbs, cb)
	}
	c.mu.Unlock()
	for _, cb := range cbs {
		cb(err)
	}
}

// wsURL converts the configured backend base URL into a websocket
// endpoint. http(s) schemes map to ws(s); a bare host gets the /ws path.
func wsURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.ConfigInvalid("backend.url is not a valid URL")
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.ConfigInvalid("backend.url has unsupported scheme " + u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String(), nil
}
