package encoding

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeInts_CommonDelta(t *testing.T) {
	// Diffs are [10, 2, 2, 2]; the common value is 2.
	values := []uint32{10, 12, 14, 16}

	got, err := DecodeInts(EncodeInts(values), len(values))
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestEncodeInts_RoundTrip(t *testing.T) {
	cases := map[string][]uint32{
		"single":     {42},
		"zeros":      {0, 0, 0, 0, 0},
		"sequential": {0, 1, 2, 3, 4, 5, 6, 7},
		"descending": {100, 90, 80, 70},
		"int8 edges": {0, 127, 127 + 128, 255},
		"int16 edge": {0, 32767, 32767 + 32768},
		"wide jumps": {0, 1 << 20, 1 << 30, 5, math.MaxUint32},
		"max":        {math.MaxUint32, 0, math.MaxUint32},
	}

	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeInts(EncodeInts(values), len(values))
			require.NoError(t, err)
			require.Equal(t, values, got)
		})
	}
}

func TestEncodeInts_Empty(t *testing.T) {
	got, err := DecodeInts(EncodeInts(nil), 0)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestEncodeInts_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, n := range []int{1, 3, 16, 255, 1000, 4096} {
		values := make([]uint32, n)
		for i := range values {
			switch rng.Intn(3) {
			case 0:
				values[i] = uint32(rng.Intn(256))
			case 1:
				values[i] = uint32(rng.Intn(65536))
			default:
				values[i] = rng.Uint32()
			}
		}

		got, err := DecodeInts(EncodeInts(values), n)
		require.NoError(t, err)
		require.Equal(t, values, got)
	}
}

func TestEncodeInts_RegularSequenceCompresses(t *testing.T) {
	// A long run with one shared delta should collapse to selector zeros.
	values := make([]uint32, 10000)
	for i := range values {
		values[i] = uint32(i * 8)
	}

	data := EncodeInts(values)
	require.Less(t, len(data), len(values)) // far below 4 bytes per element

	got, err := DecodeInts(data, len(values))
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestDecodeInts_ShortBuffer(t *testing.T) {
	data := EncodeInts([]uint32{1, 2, 3})

	// Demanding more elements than encoded must fail, not misdecode.
	_, err := DecodeInts(data, 4096)
	require.Error(t, err)
}

func TestDecodeInts_NegativeCount(t *testing.T) {
	_, err := DecodeInts(nil, -1)
	require.Error(t, err)
}

func TestWorstCaseBufferSize(t *testing.T) {
	require.Equal(t, 4, WorstCaseBufferSize(0))
	require.Equal(t, 4+1+4, WorstCaseBufferSize(1))
	require.Equal(t, 4+1+16, WorstCaseBufferSize(4))
	require.Equal(t, 4+2+20, WorstCaseBufferSize(5))
}
