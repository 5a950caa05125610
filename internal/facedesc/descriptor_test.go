package facedesc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	d := make(Descriptor, Dim)
	for i := range d {
		d[i] = float64(i) * 0.015625
	}
	d[0] = -1.5
	d[Dim-1] = math.SmallestNonzeroFloat64

	raw := d.Encode()
	require.Len(t, raw, Dim*8)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"truncated", Dim*8 - 8},
		{"not multiple of 8", Dim*8 - 3},
		{"too long", Dim*8 + 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(make([]byte, tc.size))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDistance(t *testing.T) {
	a := make(Descriptor, Dim)
	b := make(Descriptor, Dim)

	assert.Equal(t, 0.0, Distance(a, b))

	// Single differing component: distance equals |diff|.
	b[7] = 0.25
	assert.InDelta(t, 0.25, Distance(a, b), 1e-12)

	// 3-4-5 triangle across two components.
	b = make(Descriptor, Dim)
	b[0], b[1] = 3, 4
	assert.InDelta(t, 5.0, Distance(a, b), 1e-12)
}

func TestDistanceDimensionMismatch(t *testing.T) {
	a := make(Descriptor, Dim)
	b := make(Descriptor, Dim-1)
	assert.True(t, math.IsInf(Distance(a, b), 1))
}
