package vault

import (
	"testing"
)

// BenchmarkKeyDerivation benchmarks PBKDF2 key derivation at the default work factor
func BenchmarkKeyDerivation(b *testing.B) {
	password := []byte("benchmark-password")
	salt, _ := GenerateSalt()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		key := DeriveKey(password, salt, DefaultIterations)
		Zeroize(key)
	}
}

// BenchmarkKeyDerivationParallel benchmarks parallel key derivation
func BenchmarkKeyDerivationParallel(b *testing.B) {
	password := []byte("benchmark-password")
	salt, _ := GenerateSalt()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := DeriveKey(password, salt, DefaultIterations)
			Zeroize(key)
		}
	})
}

func BenchmarkSeal(b *testing.B) {
	for _, alg := range []Algorithm{AlgorithmAESGCM, AlgorithmXChaCha20Poly1305} {
		b.Run(alg.String(), func(b *testing.B) {
			codec := NewCodec(alg, DefaultIterations)
			key := make([]byte, KeySize)
			payload := make([]byte, 64*1024)

			b.SetBytes(int64(len(payload)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := codec.Seal(key, payload); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkZeroization benchmarks memory zeroization
func BenchmarkZeroization(b *testing.B) {
	data := make([]byte, 32)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		Zeroize(data)
	}
}
