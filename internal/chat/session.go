package chat

import (
	"errors"
	"io"

	"github.com/andy6609/framechat/internal/frame"
)

// HandleSession pumps bytes from the connection through the frame assembler
// and hands each complete frame to the registry, in arrival order. It returns
// after reporting the first read or protocol error.
func HandleSession(c *Client, asm *frame.Assembler, reg *Registry) {
	buf := make([]byte, asm.Capacity())

	for {
		n, err := c.Conn.Read(buf)
		if n > 0 {
			frames, ferr := asm.Feed(buf[:n])
			for _, payload := range frames {
				if !reg.Submit(Event{Type: EventFrame, Client: c, Payload: payload}) {
					return
				}
			}
			if ferr != nil {
				// An oversized frame is not skipped; the connection goes.
				reg.Submit(Event{Type: EventDisconnect, Client: c, Reason: ReasonProtocolError})
				return
			}
		}
		if err != nil {
			reason := ReasonReadError
			if errors.Is(err, io.EOF) {
				reason = ReasonPeerClosed
			}
			reg.Submit(Event{Type: EventDisconnect, Client: c, Reason: reason})
			return
		}
	}
}
