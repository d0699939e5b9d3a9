package compress

import (
	"math/rand"
	"testing"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// sectionPayload builds an input shaped like a structural section: long runs
// of small token indexes with occasional string data.
func sectionPayload(size int) []byte {
	rng := rand.New(rand.NewSource(99))
	buf := make([]byte, 0, size)
	words := []string{"points", "normals", "xformOp", "Mesh", "Scope", "default", "timeSamples"}
	for len(buf) < size {
		buf = append(buf, byte(rng.Intn(32)), 0, 0, 0)
		if rng.Intn(8) == 0 {
			buf = append(buf, words[rng.Intn(len(words))]...)
			buf = append(buf, 0)
		}
	}

	return buf[:size]
}

func BenchmarkCompressBlock(b *testing.B) {
	src := sectionPayload(64 * 1024)
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CompressBlock(src)
	}
}

func BenchmarkDecompressBlock(b *testing.B) {
	src := sectionPayload(64 * 1024)
	block := CompressBlock(src)
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = DecompressBlock(block, len(src))
	}
}

func BenchmarkReferenceLZ4(b *testing.B) {
	src := sectionPayload(64 * 1024)
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.CompressBlock(src, dst)
	}
}

func BenchmarkS2(b *testing.B) {
	src := sectionPayload(64 * 1024)
	dst := make([]byte, s2.MaxEncodedLen(len(src)))
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s2.Encode(dst, src)
	}
}

func BenchmarkZstd(b *testing.B) {
	src := sectionPayload(64 * 1024)
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		b.Fatal(err)
	}
	defer enc.Close()

	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = enc.EncodeAll(src, nil)
	}
}
