package chat

import "net"

// Client is one accepted connection. ID stands in for the socket handle and
// keys the authenticated-connection index.
type Client struct {
	ID   string
	Conn net.Conn
	Addr string
	Out  chan []byte // encoded frames, written by the writer goroutine
}

type EventType int

const (
	EventConnect EventType = iota
	EventFrame
	EventDisconnect
)

func (t EventType) String() string {
	switch t {
	case EventConnect:
		return "connect"
	case EventFrame:
		return "frame"
	case EventDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

type Event struct {
	Type      EventType
	Client    *Client
	Payload   []byte
	Reason    string
	ReplyChan chan error // used by connect to ack admission
}

// Disconnect reasons reported in logs.
const (
	ReasonPeerClosed     = "peer_closed"
	ReasonReadError      = "read_error"
	ReasonProtocolError  = "protocol_error"
	ReasonLogout         = "logout"
	ReasonDuplicateLogin = "duplicate_login"
	ReasonServerShutdown = "shutdown"
)

var (
	ErrServerFull      = errorString("server_full")
	ErrAccountLimit    = errorString("account_limit")
	ErrDuplicateUser   = errorString("duplicate_user")
	ErrUnknownUser     = errorString("unknown_user")
	ErrBadCredentials  = errorString("bad_credentials")
	ErrAlreadyLoggedIn = errorString("already_logged_in")
	ErrUserNotFound    = errorString("user_not_found")
	ErrStopped         = errorString("registry_stopped")
)

type errorString string

func (e errorString) Error() string { return string(e) }
