package facedesc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Dim is the length of a face descriptor vector. It is fixed by the
// descriptor model (dlib-style 128-d embeddings) and every stored or
// transmitted descriptor must carry exactly this many components.
const Dim = 128

// DefaultTolerance is the distance below which two descriptors are
// considered the same person, in the model's normalized space.
const DefaultTolerance = 0.6

// ErrMalformed reports stored bytes that cannot be decoded into a
// Dim-length descriptor.
var ErrMalformed = errors.New("malformed face descriptor")

// Descriptor is a fixed-dimension real-valued summary of a detected face.
type Descriptor []float64

// Encode serializes the descriptor as Dim * 8 raw little-endian float64
// bytes with no header. This matches the blobs the persistence schema
// declares, so decoding needs no metadata beyond Dim.
func (d Descriptor) Encode() []byte {
	buf := make([]byte, len(d)*8)
	for i, v := range d {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// Decode parses raw descriptor bytes. The byte length must be exactly
// Dim * 8; anything else is ErrMalformed.
func Decode(raw []byte) (Descriptor, error) {
	if len(raw) != Dim*8 {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrMalformed, len(raw), Dim*8)
	}
	d := make(Descriptor, Dim)
	for i := range d {
		d[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return d, nil
}

// Distance returns the euclidean distance between two descriptors.
// Lower means more similar. Descriptors of different lengths are never
// comparable and yield +Inf.
func Distance(a, b Descriptor) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
