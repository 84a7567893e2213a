package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/searchlab/retrieval-eval-platform/internal/analyzer"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `Retrieval systems normalize text before indexing. Tokenization
        splits the input on whitespace, stop word removal drops common function
        words, and stemming conflates inflected forms into a shared term. The
        same pipeline runs over queries so that query terms and index terms
        remain comparable, which is what makes term frequency scoring
        meaningful in the first place.`,
	"long": strings.Repeat(`Evaluation of a retrieval system compares its ranked
        output against relevance judgments collected independently of the
        system itself. Precision measures the density of relevant documents in
        a fixed rank window, recall measures coverage of the retrieved set,
        average precision rewards placing relevant documents early, and
        reciprocal rank captures how quickly the first relevant document
        appears. Aggregating these per-query figures across a query set gives
        the macro-averaged quality profile of the whole system. `, 20),
}

func BenchmarkAnalyze(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				terms := analyzer.Analyze(text)
				_ = terms
			}
		})
	}
}

func BenchmarkAnalyzeParallel(b *testing.B) {
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			terms := analyzer.Analyze(text)
			_ = terms
		}
	})
}

func BenchmarkAnalyzeVaryingSize(b *testing.B) {
	sizes := []int{10, 100, 500, 1000, 5000}
	baseWord := "retrieval evaluation precision recall ranking "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				terms := analyzer.Analyze(text)
				_ = terms
			}
		})
	}
}
