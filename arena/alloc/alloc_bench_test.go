package alloc

import (
	"math/rand"
	"testing"

	"github.com/joshuapare/heapkit/arena"
)

// benchmarkChurn allocates a working set and then repeatedly frees and
// reallocates random members of it.
func benchmarkChurn(b *testing.B, opts *Options) {
	a := New(arena.New(0), opts)
	if err := a.Init(); err != nil {
		b.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	set := make([]Ptr, 512)
	for i := range set {
		p, err := a.Malloc(16 + rng.Intn(240))
		if err != nil {
			b.Fatal(err)
		}
		set[i] = p
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		j := i % len(set)
		if err := a.Free(set[j]); err != nil {
			b.Fatal(err)
		}
		p, err := a.Malloc(16 + rng.Intn(240))
		if err != nil {
			b.Fatal(err)
		}
		set[j] = p
	}
}

func Benchmark_Churn_FirstFit(b *testing.B) { benchmarkChurn(b, &Options{Strategy: FirstFit}) }
func Benchmark_Churn_NextFit(b *testing.B)  { benchmarkChurn(b, &Options{Strategy: NextFit}) }
func Benchmark_Churn_BestFit(b *testing.B)  { benchmarkChurn(b, &Options{Strategy: BestFit}) }

// Benchmark_Realloc_Grow grows a single block step by step.
func Benchmark_Realloc_Grow(b *testing.B) {
	for _, rp := range []ReallocPolicy{ReallocCopy, ReallocInPlace} {
		b.Run(rp.String(), func(b *testing.B) {
			b.ReportAllocs()
			for range b.N {
				a := New(arena.New(0), &Options{Realloc: rp})
				if err := a.Init(); err != nil {
					b.Fatal(err)
				}
				p, err := a.Malloc(8)
				if err != nil {
					b.Fatal(err)
				}
				for size := 16; size <= 4096; size += 64 {
					if p, err = a.Realloc(p, size); err != nil {
						b.Fatal(err)
					}
				}
			}
		})
	}
}

// Benchmark_Bump_Malloc measures the baseline.
func Benchmark_Bump_Malloc(b *testing.B) {
	ba := NewBump(arena.New(0), nil)
	if err := ba.Init(); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := range b.N {
		if _, err := ba.Malloc(16 + i%64); err != nil {
			// 20 MiB ceiling; start over
			ba = NewBump(arena.New(0), nil)
			if err := ba.Init(); err != nil {
				b.Fatal(err)
			}
		}
	}
}
