package compress

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

func TestCompressBlock_LiteralOnly(t *testing.T) {
	src := []byte("hello")
	block := CompressBlock(src)

	// Five literals: token 0x50 followed by the bytes themselves.
	require.Equal(t, append([]byte{0x50}, src...), block)
	require.Equal(t, src, DecompressBlock(block, len(src)))
}

func TestCompressBlock_Empty(t *testing.T) {
	block := CompressBlock(nil)
	require.Equal(t, []byte{0x00}, block)
	require.Empty(t, DecompressBlock(block, 0))
}

func TestCompressBlock_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	cases := map[string][]byte{
		"empty":      {},
		"one":        {0x7f},
		"three":      []byte("abc"),
		"twelve":     []byte("abcdabcdabcd"),
		"repetitive": bytes.Repeat([]byte("abcd"), 1000),
		"zeros":      make([]byte, 4096),
		"text":       bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 64),
	}

	random := make([]byte, 8192)
	rng.Read(random)
	cases["random"] = random

	mixed := append(bytes.Repeat([]byte{0xAA}, 512), random[:512]...)
	mixed = append(mixed, bytes.Repeat([]byte("xyz"), 200)...)
	cases["mixed"] = mixed

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			block := CompressBlock(src)
			got := DecompressBlock(block, len(src))
			if len(src) == 0 {
				require.Empty(t, got)
			} else {
				require.Equal(t, src, got)
			}
		})
	}
}

func TestCompressBlock_RepetitiveShrinks(t *testing.T) {
	src := bytes.Repeat([]byte("abcd"), 1000)
	block := CompressBlock(src)
	require.Less(t, len(block), len(src)/10)
}

func TestDecompressBlock_Truncated(t *testing.T) {
	src := bytes.Repeat([]byte("abcdefgh"), 512)
	block := CompressBlock(src)

	// Every truncation point must degrade gracefully: a prefix of the
	// original, never a panic or garbage beyond expectedSize.
	for cut := 0; cut < len(block); cut += 7 {
		got := DecompressBlock(block[:cut], len(src))
		require.LessOrEqual(t, len(got), len(src))
		require.Equal(t, src[:len(got)], got)
	}
}

func TestDecompressBlock_BadOffset(t *testing.T) {
	// Token demands a match at offset 9 with only 4 bytes of history.
	block := []byte{0x40, 'a', 'b', 'c', 'd', 0x09, 0x00}
	got := DecompressBlock(block, 32)
	require.Equal(t, []byte("abcd"), got)
}

func TestCompressBlock_ReferenceDecodes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	inputs := [][]byte{
		[]byte("hello"),
		bytes.Repeat([]byte("abcd"), 1000),
		bytes.Repeat([]byte("scene description container format "), 100),
		make([]byte, 1000),
	}
	random := make([]byte, 4096)
	rng.Read(random)
	inputs = append(inputs, random)

	for _, src := range inputs {
		block := CompressBlock(src)

		dst := make([]byte, len(src))
		n, err := lz4.UncompressBlock(block, dst)
		require.NoError(t, err)
		require.Equal(t, src, dst[:n])
	}
}

func TestDecompressBlock_ReferenceEncoded(t *testing.T) {
	src := bytes.Repeat([]byte("parallel integer arrays without pointers "), 200)

	var c lz4.Compressor
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := c.CompressBlock(src, dst)
	require.NoError(t, err)
	require.Positive(t, n)

	require.Equal(t, src, DecompressBlock(dst[:n], len(src)))
}

func TestEnvelope_RoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("tokens\x00strings\x00"), 128)

	wrapped := Compress(src)
	require.Equal(t, byte(0), wrapped[0])
	require.Equal(t, src, Decompress(wrapped, len(src)))

	require.Nil(t, Decompress(nil, 10))
}
