package evmrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// DefaultReconnectDelay is the initial wait before redialing a
	// dropped connection.
	DefaultReconnectDelay = 1 * time.Second

	// DefaultMaxReconnectDelay caps the reconnect backoff.
	DefaultMaxReconnectDelay = 30 * time.Second

	// DefaultPingInterval is how often keepalive pings are sent.
	DefaultPingInterval = 30 * time.Second

	// DefaultReadTimeout bounds a single read from the socket.
	DefaultReadTimeout = 60 * time.Second

	// DefaultWriteTimeout bounds a single write to the socket.
	DefaultWriteTimeout = 10 * time.Second

	// subscribeTimeout bounds the wait for a subscription confirmation.
	subscribeTimeout = 10 * time.Second

	// eventBuffer is the capacity of the delivered-logs channel. Events
	// arriving while the buffer is full are dropped.
	eventBuffer = 64
)

// ErrAlreadySubscribed is returned by SubscribeLogs when a subscription
// is already active on this client.
var ErrAlreadySubscribed = errors.New("log subscription already active")

// Log is an event emitted by a contract, as delivered by a logs
// subscription.
type Log struct {
	Address         common.Address `json:"address"`
	Topics          []common.Hash  `json:"topics"`
	Data            hexutil.Bytes  `json:"data"`
	BlockNumber     hexutil.Uint64 `json:"blockNumber"`
	TransactionHash common.Hash    `json:"transactionHash"`
	LogIndex        hexutil.Uint64 `json:"logIndex"`
	Removed         bool           `json:"removed"`
}

// LogFilter narrows a logs subscription to one contract and optionally
// to specific event topics.
type LogFilter struct {
	Address common.Address
	Topics  []common.Hash
}

type logFilterParams struct {
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics,omitempty"`
}

type wsConfig struct {
	reconnectDelay    time.Duration
	maxReconnectDelay time.Duration
	pingInterval      time.Duration
	readTimeout       time.Duration
	writeTimeout      time.Duration
	log               zerolog.Logger
}

// WSOption configures a WSClient.
type WSOption func(*wsConfig)

// WithWSLogger attaches a logger to the client.
func WithWSLogger(log zerolog.Logger) WSOption {
	return func(c *wsConfig) { c.log = log }
}

// WithReconnectDelay sets the initial reconnect backoff.
func WithReconnectDelay(d time.Duration) WSOption {
	return func(c *wsConfig) { c.reconnectDelay = d }
}

// WithMaxReconnectDelay caps the reconnect backoff.
func WithMaxReconnectDelay(d time.Duration) WSOption {
	return func(c *wsConfig) { c.maxReconnectDelay = d }
}

// WithPingInterval sets the keepalive ping cadence.
func WithPingInterval(d time.Duration) WSOption {
	return func(c *wsConfig) { c.pingInterval = d }
}

// WithReadTimeout bounds a single read from the socket.
func WithReadTimeout(d time.Duration) WSOption {
	return func(c *wsConfig) { c.readTimeout = d }
}

// WithWriteTimeout bounds a single write to the socket.
func WithWriteTimeout(d time.Duration) WSOption {
	return func(c *wsConfig) { c.writeTimeout = d }
}

func defaultWSConfig() wsConfig {
	return wsConfig{
		reconnectDelay:    DefaultReconnectDelay,
		maxReconnectDelay: DefaultMaxReconnectDelay,
		pingInterval:      DefaultPingInterval,
		readTimeout:       DefaultReadTimeout,
		writeTimeout:      DefaultWriteTimeout,
		log:               zerolog.Nop(),
	}
}

// WSClient maintains a logs subscription over a WebSocket JSON-RPC
// connection. It redials with exponential backoff when the connection
// drops and re-establishes the subscription on the new connection.
type WSClient struct {
	endpoint string
	config   wsConfig

	mu      sync.Mutex
	conn    *websocket.Conn
	subID   string
	filter  *LogFilter
	pending map[uint64]chan wsResponse

	events    chan Log
	requestID atomic.Uint64
	closed    atomic.Bool
	done      chan struct{}
	wg        sync.WaitGroup
}

type wsRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type wsResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type wsNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  struct {
		Subscription string          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params"`
}

// NewWSClient dials the WebSocket endpoint and starts the read and
// keepalive loops.
func NewWSClient(ctx context.Context, endpoint string, opts ...WSOption) (*WSClient, error) {
	cfg := defaultWSConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	c := &WSClient{
		endpoint: endpoint,
		config:   cfg,
		conn:     conn,
		pending:  make(map[uint64]chan wsResponse),
		events:   make(chan Log, eventBuffer),
		done:     make(chan struct{}),
	}
	c.installPongHandler(conn)

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()
	return c, nil
}

// SubscribeLogs subscribes to logs matching the filter. Only one
// subscription per client is supported; the returned channel stays
// valid across reconnects.
func (c *WSClient) SubscribeLogs(ctx context.Context, filter LogFilter) (<-chan Log, error) {
	c.mu.Lock()
	if c.filter != nil {
		c.mu.Unlock()
		return nil, ErrAlreadySubscribed
	}
	c.filter = &filter
	c.mu.Unlock()

	ch, id, err := c.sendSubscribe(filter)
	if err != nil {
		return nil, err
	}
	defer c.removePending(id)

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return nil, fmt.Errorf("eth_subscribe: %w", resp.Error)
		}
		var sub string
		if err := json.Unmarshal(resp.Result, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription id: %w", err)
		}
		c.mu.Lock()
		c.subID = sub
		c.mu.Unlock()
		c.config.log.Debug().Str("subscription", sub).Msg("logs subscription established")
		return c.events, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(subscribeTimeout):
		return nil, fmt.Errorf("eth_subscribe: no confirmation within %s", subscribeTimeout)
	}
}

// Close tears down the connection and stops the background loops.
func (c *WSClient) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	var err error
	if conn != nil {
		err = conn.Close()
	}
	c.wg.Wait()
	return err
}

func (c *WSClient) sendSubscribe(filter LogFilter) (chan wsResponse, uint64, error) {
	id := c.requestID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "eth_subscribe",
		Params:  []any{"logs", logFilterParams{Address: filter.Address, Topics: filter.Topics}},
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal subscribe request: %w", err)
	}

	ch := make(chan wsResponse, 1)
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, 0, errors.New("connection not established")
	}
	c.pending[id] = ch
	conn.SetWriteDeadline(time.Now().Add(c.config.writeTimeout))
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.mu.Unlock()
	if err != nil {
		c.removePending(id)
		return nil, 0, fmt.Errorf("write subscribe request: %w", err)
	}
	return ch, id, nil
}

func (c *WSClient) removePending(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *WSClient) installPongHandler(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(c.config.readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.config.readTimeout))
	})
}

func (c *WSClient) readLoop() {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			if !c.reconnect() {
				return
			}
			continue
		}

		conn.SetReadDeadline(time.Now().Add(c.config.readTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			c.config.log.Warn().Err(err).Msg("websocket read failed, reconnecting")
			conn.Close()
			c.mu.Lock()
			c.conn = nil
			c.mu.Unlock()
			continue
		}
		c.handleMessage(data)
	}
}

// reconnect redials with exponential backoff until it succeeds or the
// client is closed. It reports whether the loop should continue.
func (c *WSClient) reconnect() bool {
	delay := c.config.reconnectDelay
	for {
		select {
		case <-c.done:
			return false
		case <-time.After(delay):
		}

		conn, _, err := websocket.DefaultDialer.Dial(c.endpoint, nil)
		if err != nil {
			c.config.log.Warn().Err(err).Dur("retry_in", delay).Msg("websocket redial failed")
			delay *= 2
			if delay > c.config.maxReconnectDelay {
				delay = c.config.maxReconnectDelay
			}
			continue
		}

		c.installPongHandler(conn)
		c.mu.Lock()
		c.conn = conn
		c.subID = ""
		c.mu.Unlock()
		c.config.log.Info().Str("endpoint", c.endpoint).Msg("websocket reconnected")
		c.resubscribe()
		return true
	}
}

// resubscribe re-establishes the stored log filter on a fresh
// connection. Confirmation is awaited off the read loop so that
// incoming frames keep draining.
func (c *WSClient) resubscribe() {
	c.mu.Lock()
	filter := c.filter
	c.mu.Unlock()
	if filter == nil {
		return
	}

	ch, id, err := c.sendSubscribe(*filter)
	if err != nil {
		c.config.log.Error().Err(err).Msg("resubscribe request failed")
		return
	}
	go func() {
		defer c.removePending(id)
		select {
		case resp := <-ch:
			if resp.Error != nil {
				c.config.log.Error().Err(resp.Error).Msg("resubscribe rejected")
				return
			}
			var sub string
			if err := json.Unmarshal(resp.Result, &sub); err != nil {
				c.config.log.Error().Err(err).Msg("resubscribe confirmation malformed")
				return
			}
			c.mu.Lock()
			c.subID = sub
			c.mu.Unlock()
			c.config.log.Debug().Str("subscription", sub).Msg("logs subscription restored")
		case <-c.done:
		case <-time.After(subscribeTimeout):
			c.config.log.Warn().Msg("resubscribe confirmation timed out")
		}
	}()
}

func (c *WSClient) handleMessage(data []byte) {
	var note wsNotification
	if err := json.Unmarshal(data, &note); err == nil && note.Method == "eth_subscription" {
		c.mu.Lock()
		current := c.subID
		c.mu.Unlock()
		if current != "" && note.Params.Subscription != current {
			return
		}
		var entry Log
		if err := json.Unmarshal(note.Params.Result, &entry); err != nil {
			c.config.log.Warn().Err(err).Msg("malformed log notification")
			return
		}
		select {
		case c.events <- entry:
		default:
			c.config.log.Warn().
				Str("tx", entry.TransactionHash.Hex()).
				Msg("event buffer full, dropping log")
		}
		return
	}

	var resp wsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.config.log.Warn().Err(err).Msg("unrecognized websocket frame")
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	c.mu.Unlock()
	if ok {
		ch <- resp
	}
}

func (c *WSClient) pingLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.config.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()
			if conn == nil {
				continue
			}
			deadline := time.Now().Add(c.config.writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.config.log.Warn().Err(err).Msg("keepalive ping failed")
			}
		}
	}
}
