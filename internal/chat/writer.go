package chat

import (
	"net"
	"time"

	"github.com/andy6609/framechat/internal/frame"
)

// StartOutboundWriter writes encoded frames from out until the channel is
// closed, then closes the connection. Frames already queued are flushed first.
func StartOutboundWriter(conn net.Conn, out <-chan []byte, timeout time.Duration) {
	go func() {
		defer conn.Close()
		for b := range out {
			if timeout > 0 {
				_ = conn.SetWriteDeadline(time.Now().Add(timeout))
			}
			if err := frame.WriteAll(conn, b); err != nil {
				// Best-effort. Close now so the reader notices, and keep
				// draining so the registry never waits on a dead writer.
				_ = conn.Close()
				for range out {
				}
				return
			}
		}
	}()
}
