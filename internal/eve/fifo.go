package eve

import (
	"context"
	"encoding/binary"
	"strings"
)

const (
	// MaxString is the longest text argument sent to the coprocessor; longer
	// strings are cut.
	MaxString = 249

	// blockChunk is the largest payload written to the FIFO in one
	// transaction before waiting for the coprocessor to consume it.
	blockChunk = 3840
)

func appendWord(b []byte, w uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, w)
}

// appendPair packs two 16-bit values into one word, lo in the low half.
func appendPair(b []byte, lo, hi uint16) []byte {
	return appendWord(b, uint32(lo)|uint32(hi)<<16)
}

func appendXY(b []byte, x, y int16) []byte {
	return appendPair(b, uint16(x), uint16(y))
}

func appendString(b []byte, s string) []byte {
	n := min(len(s), MaxString)
	if i := strings.IndexByte(s[:n], 0); i >= 0 {
		n = i
	}
	b = append(b, s[:n]...)
	// 1..4 zero bytes: terminator plus alignment.
	return append(b, make([]byte, 4-n&3)...)
}

// padding returns the number of zero bytes that align n to 4.
func padding(n int) int {
	return (4 - n&3) & 3
}

// blockTransfer streams data into the FIFO in chunks of at most blockChunk
// bytes. Each chunk is its own transaction, zero padded to a word boundary,
// and is executed before the next one is sent.
func (e *Engine) blockTransfer(ctx context.Context, data []byte) error {
	for len(data) > 0 {
		n := min(len(data), blockChunk)
		b := make([]byte, 0, len(cmdHeader)+n+3)
		b = append(b, cmdHeader[:]...)
		b = append(b, data[:n]...)
		b = append(b, make([]byte, padding(n))...)
		data = data[n:]

		e.waitFlush()
		e.transaction(b, nil)
		if err := e.ExecuteAndWait(ctx); err != nil {
			return err
		}
	}
	return e.err
}
