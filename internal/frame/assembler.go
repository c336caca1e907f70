package frame

import "fmt"

// State is the receive-assembly state of a connection.
type State int

const (
	AwaitLength State = iota
	AwaitBody
)

func (s State) String() string {
	switch s {
	case AwaitLength:
		return "await_length"
	case AwaitBody:
		return "await_body"
	default:
		return "unknown"
	}
}

// Assembler rebuilds frames from a byte stream that may arrive in arbitrary
// pieces. It owns a fixed buffer of the configured capacity; a declared length
// that does not fit is a fatal protocol error and the assembler must not be
// fed again afterwards.
type Assembler struct {
	buf      []byte
	state    State
	expected int
	received int
}

func NewAssembler(bufferSize int) *Assembler {
	if bufferSize < 2 {
		bufferSize = DefaultBufferSize
	}
	return &Assembler{buf: make([]byte, bufferSize)}
}

// Feed consumes p and returns every frame completed by it, in order.
// Returned payloads are copies and stay valid after the next call.
// Zero-length frames carry nothing and are skipped.
func (a *Assembler) Feed(p []byte) ([][]byte, error) {
	var frames [][]byte
	for len(p) > 0 {
		if a.state == AwaitLength {
			l := int(p[0])
			p = p[1:]
			if l > len(a.buf)-1 {
				return frames, fmt.Errorf("%w: declared %d, capacity %d", ErrFrameTooLarge, l, len(a.buf)-1)
			}
			if l == 0 {
				continue
			}
			a.expected = l
			a.received = 0
			a.state = AwaitBody
			continue
		}

		n := copy(a.buf[a.received:a.expected], p)
		a.received += n
		p = p[n:]

		if a.received == a.expected {
			payload := make([]byte, a.received)
			copy(payload, a.buf[:a.received])
			frames = append(frames, payload)
			a.reset()
		}
	}
	return frames, nil
}

// State reports what the assembler is waiting for.
func (a *Assembler) State() State { return a.state }

// Pending returns the body bytes accumulated for the frame in progress.
func (a *Assembler) Pending() int { return a.received }

// Capacity returns the size of the fixed receive buffer.
func (a *Assembler) Capacity() int { return len(a.buf) }

func (a *Assembler) reset() {
	a.state = AwaitLength
	a.expected = 0
	a.received = 0
}
