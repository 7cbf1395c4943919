package test

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	mrand "math/rand/v2"
)

// Samples are generated rather than embedded; the generators are
// seeded so content is stable across runs.

// GenCompressible returns sz bytes of repetitive log-like text.
func GenCompressible(sz int) []byte {
	var (
		buf bytes.Buffer
		rng = mrand.New(mrand.NewPCG(42, 54))
	)

	hosts := []string{"alpha", "beta", "gamma", "delta"}
	levels := []string{"info", "warn", "error"}

	for buf.Len() < sz {
		fmt.Fprintf(&buf, "%s host=%s pid=%d msg=request served in %dms path=/api/v1/items/%d\n",
			levels[rng.IntN(len(levels))],
			hosts[rng.IntN(len(hosts))],
			rng.IntN(1<<15),
			rng.IntN(500),
			rng.IntN(1<<20))
	}

	return buf.Bytes()[:sz]
}

// GenUncompressable returns sz bytes of random data.
func GenUncompressable(sz int) []byte {
	data := make([]byte, sz)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return data
}

// GenDictSamples returns n small records sharing structure, suitable
// for dictionary training.
func GenDictSamples(n int) [][]byte {
	rng := mrand.New(mrand.NewPCG(7, 13))

	samples := make([][]byte, n)
	for i := range samples {
		samples[i] = fmt.Appendf(nil,
			`{"id":%d,"service":"checkout","region":"us-east-%d","status":"%s","latency_ms":%d}`,
			rng.Int64N(1<<40), rng.IntN(4)+1,
			[]string{"ok", "retry", "failed"}[rng.IntN(3)],
			rng.IntN(2000))
	}
	return samples
}

func Sha2sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
