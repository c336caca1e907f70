package frame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadLimit(t *testing.T) {
	tests := []struct {
		bufferSize int
		want       int
	}{
		{DefaultBufferSize, MaxPayload},
		{256, 255},
		{17, 16},
		{2, 1},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PayloadLimit(tt.bufferSize), "bufferSize=%d", tt.bufferSize)
	}
}

func TestEncodeDecode_RoundTripAllLengths(t *testing.T) {
	limit := PayloadLimit(DefaultBufferSize)
	for n := 1; n <= limit; n++ {
		payload := bytes.Repeat([]byte{byte(n)}, n)

		b, err := Encode(payload, limit)
		require.NoError(t, err)
		require.Len(t, b, n+1)
		require.Equal(t, byte(n), b[0])

		a := NewAssembler(DefaultBufferSize)
		frames, err := a.Feed(b)
		require.NoError(t, err)
		require.Len(t, frames, 1)
		require.Equal(t, payload, frames[0])
		require.Equal(t, AwaitLength, a.State())
	}
}

func TestEncode_RejectsEmptyAndOversized(t *testing.T) {
	_, err := Encode(nil, 10)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = Encode(make([]byte, 11), 10)
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	_, err = Encode(make([]byte, 256), 4096)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestAppend_CopiesOnlySliceLength(t *testing.T) {
	backing := []byte("hello world")
	b, err := Append(nil, backing[:5], MaxPayload)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{5}, "hello"...), b)
}

func TestWrite_ProducesFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []byte("hi"), MaxPayload))
	assert.Equal(t, []byte{2, 'h', 'i'}, buf.Bytes())
}

type shortWriter struct{ bytes.Buffer }

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return w.Buffer.Write(p)
}

func TestWriteAll_RetriesShortWrites(t *testing.T) {
	var w shortWriter
	require.NoError(t, WriteAll(&w, []byte{3, 'a', 'b', 'c'}))
	assert.Equal(t, []byte{3, 'a', 'b', 'c'}, w.Bytes())
}

func TestAssembler_ByteByByte(t *testing.T) {
	b, err := Encode([]byte("partial reads"), MaxPayload)
	require.NoError(t, err)

	a := NewAssembler(DefaultBufferSize)
	var got [][]byte
	for i, c := range b {
		frames, err := a.Feed([]byte{c})
		require.NoError(t, err)
		got = append(got, frames...)
		if i > 0 && i < len(b)-1 {
			assert.Equal(t, AwaitBody, a.State())
			assert.Equal(t, i, a.Pending())
		}
	}
	require.Len(t, got, 1)
	assert.Equal(t, "partial reads", string(got[0]))
	assert.Equal(t, 0, a.Pending())
}

func TestAssembler_SeveralFramesInOneChunk(t *testing.T) {
	var stream []byte
	for _, s := range []string{"one", "two", "three"} {
		var err error
		stream, err = Append(stream, []byte(s), MaxPayload)
		require.NoError(t, err)
	}
	// Trailing half frame stays pending.
	stream = append(stream, 4, 'f', 'o')

	a := NewAssembler(DefaultBufferSize)
	frames, err := a.Feed(stream)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, "one", string(frames[0]))
	assert.Equal(t, "two", string(frames[1]))
	assert.Equal(t, "three", string(frames[2]))
	assert.Equal(t, AwaitBody, a.State())
	assert.Equal(t, 2, a.Pending())

	frames, err = a.Feed([]byte("ur"))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "four", string(frames[0]))
}

func TestAssembler_OversizedLengthIsProtocolError(t *testing.T) {
	a := NewAssembler(16)

	frames, err := a.Feed([]byte{2, 'o', 'k', 16, 'x', 'x'})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFrameTooLarge))
	// Only frames completed before the bad header are delivered.
	require.Len(t, frames, 1)
	assert.Equal(t, "ok", string(frames[0]))
}

func TestAssembler_ExactCapacityFits(t *testing.T) {
	a := NewAssembler(16)
	payload := bytes.Repeat([]byte("z"), 15)
	frames, err := a.Feed(append([]byte{15}, payload...))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, payload, frames[0])
}

func TestAssembler_SkipsZeroLengthFrames(t *testing.T) {
	a := NewAssembler(DefaultBufferSize)
	frames, err := a.Feed([]byte{0, 0, 1, 'x'})
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "x", string(frames[0]))
}

func TestAssembler_PayloadsDoNotAlias(t *testing.T) {
	a := NewAssembler(DefaultBufferSize)
	first, err := a.Feed([]byte{1, 'a'})
	require.NoError(t, err)
	_, err = a.Feed([]byte{1, 'b'})
	require.NoError(t, err)
	assert.Equal(t, "a", string(first[0]))
}
