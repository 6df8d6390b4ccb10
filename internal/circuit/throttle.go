package circuit

import (
	"encoding/binary"
	"math"

	"github.com/gridlink/gridlink/internal/protocol/protoerr"
)

// Throttle is the seven-channel bandwidth schedule advertised to the peer,
// in bytes per second. The peer polices inbound traffic against it; the
// engine itself only caps outbound resends at the Resend channel.
type Throttle struct {
	Resend  float32
	Land    float32
	Wind    float32
	Cloud   float32
	Task    float32
	Texture float32
	Asset   float32
}

// Per-channel clamp bounds in bytes per second.
var throttleBounds = [7][2]float32{
	{10_000, 150_000},  // resend
	{0, 170_000},       // land
	{0, 34_000},        // wind
	{0, 34_000},        // cloud
	{4_000, 446_000},   // task
	{4_000, 446_000},   // texture
	{10_000, 220_000},  // asset
}

// Default split of the total budget across the channels.
var throttleFractions = [7]float64{
	0.100,
	0.52 / 3,
	0.05,
	0.05,
	0.704 / 3,
	0.704 / 3,
	0.484 / 3,
}

// NewThrottle splits a total byte budget across the channels by the
// default fractions. The advertised vector carries the raw split; the
// clamp bounds are applied only by Clamp, which ThrottleFromBytes calls.
func NewThrottle(total float64) Throttle {
	var t Throttle
	ch := t.channels()
	for i, f := range throttleFractions {
		*ch[i] = float32(total * f)
	}
	return t
}

func (t *Throttle) channels() [7]*float32 {
	return [7]*float32{&t.Resend, &t.Land, &t.Wind, &t.Cloud, &t.Task, &t.Texture, &t.Asset}
}

// Clamp bounds every channel to its legal range.
func (t *Throttle) Clamp() {
	ch := t.channels()
	for i, b := range throttleBounds {
		if *ch[i] < b[0] {
			*ch[i] = b[0]
		} else if *ch[i] > b[1] {
			*ch[i] = b[1]
		}
	}
}

// Total returns the sum of the channel budgets.
func (t Throttle) Total() float64 {
	sum := 0.0
	for _, c := range t.channels() {
		sum += float64(*c)
	}
	return sum
}

// Bytes renders the 28-byte wire form: seven little-endian IEEE 754
// singles in channel order.
func (t Throttle) Bytes() []byte {
	out := make([]byte, 0, 28)
	for _, c := range t.channels() {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(*c))
	}
	return out
}

// ThrottleFromBytes decodes the 28-byte wire form.
func ThrottleFromBytes(b []byte) (Throttle, error) {
	if len(b) < 28 {
		return Throttle{}, protoerr.Malformed("throttle vector %d bytes, want 28", len(b))
	}
	var t Throttle
	ch := t.channels()
	for i := range ch {
		*ch[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	t.Clamp()
	return t, nil
}
