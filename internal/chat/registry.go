package chat

import (
	"log/slog"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/andy6609/framechat/internal/chatlog"
	"github.com/andy6609/framechat/internal/frame"
)

// Options configures the registry and the server around it.
type Options struct {
	Addr          string
	MaxClients    int  // connection limit and registered-account limit
	CommandChar   byte // command sentinel
	BufferSize    int  // per-connection receive buffer
	WriteTimeout  time.Duration
	SendTimeout   time.Duration // how long a send may wait on a full outbound queue
	OutboundQueue int

	CommandLog chatlog.LineSink
	MessageLog chatlog.LineSink
	History    chatlog.LineSource // replayed by getlog; usually the MessageLog file
}

func (o *Options) setDefaults() {
	if o.MaxClients <= 0 {
		o.MaxClients = 10
	}
	if o.CommandChar == 0 {
		o.CommandChar = '~'
	}
	if o.BufferSize < 2 {
		o.BufferSize = frame.DefaultBufferSize
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 100 * time.Millisecond
	}
	if o.OutboundQueue <= 0 {
		o.OutboundQueue = 256
	}
	if o.CommandLog == nil {
		o.CommandLog = chatlog.Discard
	}
	if o.MessageLog == nil {
		o.MessageLog = chatlog.Discard
	}
}

// Registry is the event loop. A single goroutine (Run) owns every tracked
// connection and the session store, so each frame is handled to completion,
// including the sends it triggers, before the next event is looked at.
type Registry struct {
	events   chan Event
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger

	opts     Options
	limit    int
	commands commandTable

	// Owned by Run.
	clients  []*Client
	accounts *Accounts
}

func NewRegistry(buffer int, opts Options, logger *slog.Logger) *Registry {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts.setDefaults()
	r := &Registry{
		events:   make(chan Event, buffer),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   logger,
		opts:     opts,
		limit:    frame.PayloadLimit(opts.BufferSize),
		accounts: NewAccounts(opts.MaxClients),
	}
	r.commands = newCommandTable(opts.CommandChar)
	return r
}

// Submit hands ev to the loop. It reports false once the loop is stopping.
func (r *Registry) Submit(ev Event) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.stopCh:
		return false
	}
}

// Connect asks the loop to admit c and waits for the decision.
// ErrStopped means the loop never looked at c, so c.Out is still open.
func (r *Registry) Connect(c *Client) error {
	reply := make(chan error, 1)
	if !r.Submit(Event{Type: EventConnect, Client: c, ReplyChan: reply}) {
		return ErrStopped
	}
	select {
	case err := <-reply:
		return err
	case <-r.doneCh:
		// The reply is sent before Run returns.
		select {
		case err := <-reply:
			return err
		default:
			return ErrStopped
		}
	}
}

// Stop signals the Run loop to exit.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Wait blocks until the Run loop has completely finished.
func (r *Registry) Wait() {
	<-r.doneCh
}

func (r *Registry) Run() {
	defer close(r.doneCh)

	for {
		select {
		case ev := <-r.events:
			start := time.Now()

			switch ev.Type {
			case EventConnect:
				r.handleConnect(ev)
			case EventFrame:
				r.handleFrame(ev)
			case EventDisconnect:
				r.handleDisconnect(ev)
			}

			EventProcessingDuration.WithLabelValues(ev.Type.String()).Observe(time.Since(start).Seconds())
		case <-r.stopCh:
			r.closeAll()
			return
		}
	}
}

func (r *Registry) handleConnect(ev Event) {
	c := ev.Client
	reply := func(err error) {
		if ev.ReplyChan != nil {
			ev.ReplyChan <- err
			close(ev.ReplyChan)
		}
	}

	if len(r.clients) >= r.opts.MaxClients {
		RejectedConnections.Inc()
		r.logger.Warn("connection rejected: maximum clients reached",
			"addr", c.Addr, "max_clients", r.opts.MaxClients)
		close(c.Out)
		reply(ErrServerFull)
		return
	}

	r.clients = append(r.clients, c)
	ConnectedClients.Set(float64(len(r.clients)))
	r.logger.Info("client connected", "id", c.ID, "addr", c.Addr, "total", len(r.clients))

	r.sendText(c, "Welcome to the chat server!\nCommand character is: "+string(r.opts.CommandChar))
	reply(nil)
}

func (r *Registry) handleFrame(ev Event) {
	// Frames read before a connection was removed are discarded.
	if r.indexOf(ev.Client) < 0 {
		return
	}
	r.dispatch(ev.Client, ev.Payload)
}

func (r *Registry) handleDisconnect(ev Event) {
	r.remove(ev.Client, ev.Reason)
}

// remove runs the shared disconnect path: release the login, forget the
// connection and let its writer flush and close the socket.
func (r *Registry) remove(c *Client, reason string) {
	idx := r.indexOf(c)
	if idx < 0 {
		return
	}

	if username, ok := r.accounts.Logout(c.ID); ok {
		r.audit("User: " + username + " has logged out.")
		r.logger.Info("user logged out", "username", username, "id", c.ID)
		AuthenticatedUsers.Set(float64(r.accounts.Authenticated()))
	}

	r.clients = slices.Delete(r.clients, idx, idx+1)
	close(c.Out)
	ConnectedClients.Set(float64(len(r.clients)))

	r.logger.Info("client disconnected",
		"id", c.ID, "addr", c.Addr, "reason", reason, "remaining", len(r.clients))
}

func (r *Registry) closeAll() {
	for len(r.clients) > 0 {
		c := r.clients[0]
		r.remove(c, ReasonServerShutdown)
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
	}
}

func (r *Registry) indexOf(c *Client) int {
	return slices.Index(r.clients, c)
}

func (r *Registry) clientByID(id string) *Client {
	for _, c := range r.clients {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// sendText delivers text, split over as many frames as the payload limit
// requires.
func (r *Registry) sendText(c *Client, text string) {
	for _, chunk := range splitPayload(text, r.limit) {
		r.sendFrame(c, []byte(chunk))
	}
}

func (r *Registry) sendFrame(c *Client, payload []byte) {
	b, err := frame.Encode(payload, r.limit)
	if err != nil {
		DroppedFrames.Inc()
		r.logger.Warn("dropping unencodable frame", "id", c.ID, "error", err)
		return
	}

	select {
	case c.Out <- b:
		return
	default:
	}

	// Queue full: wait briefly for the writer, then give up on this frame.
	timer := time.NewTimer(r.opts.SendTimeout)
	defer timer.Stop()
	select {
	case c.Out <- b:
	case <-timer.C:
		DroppedFrames.Inc()
		r.logger.Warn("dropping frame for slow client", "id", c.ID, "addr", c.Addr)
	}
}

func (r *Registry) audit(line string) {
	if err := r.opts.CommandLog.AppendLine(line); err != nil {
		r.logger.Warn("command log append failed", "error", err)
	}
}

func (r *Registry) record(line string) {
	if err := r.opts.MessageLog.AppendLine(line); err != nil {
		r.logger.Warn("message log append failed", "error", err)
	}
}

func splitPayload(s string, limit int) []string {
	if s == "" || limit <= 0 {
		return nil
	}
	var chunks []string
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	return append(chunks, s)
}
