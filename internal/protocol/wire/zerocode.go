package wire

import (
	"github.com/gridlink/gridlink/internal/protocol/protoerr"
)

// ZeroEncode collapses runs of zero bytes in a payload region into
// 0x00 <count> pairs. Runs longer than 255 are split into multiple pairs.
// The header and ack tail are never coded; callers pass only the payload
// region.
func ZeroEncode(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); {
		if src[i] != 0 {
			out = append(out, src[i])
			i++
			continue
		}
		run := 0
		for i < len(src) && src[i] == 0 && run < 255 {
			run++
			i++
		}
		out = append(out, 0, byte(run))
	}
	return out
}

// ZeroDecode expands a zero-coded payload region. A 0x00 byte followed by a
// zero count, or a trailing 0x00 with no count byte, is a malformed stream.
func ZeroDecode(src []byte) ([]byte, error) {
	out := make([]byte, 0, len(src)*2)
	for i := 0; i < len(src); i++ {
		b := src[i]
		if b != 0 {
			out = append(out, b)
			continue
		}
		i++
		if i >= len(src) {
			return nil, protoerr.Malformed("zero-coded stream ends mid-run")
		}
		count := int(src[i])
		if count == 0 {
			return nil, protoerr.Malformed("zero-coded run of length 0 at offset %d", i-1)
		}
		for j := 0; j < count; j++ {
			out = append(out, 0)
		}
	}
	return out, nil
}
