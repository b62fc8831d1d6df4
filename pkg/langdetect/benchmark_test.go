package langdetect

import (
	"testing"
)

func benchmarkLanguage(b *testing.B, code []byte) {
	b.Helper()
	d := New()
	b.ResetTimer()
	for range b.N {
		d.Language(code)
	}
}

func BenchmarkLanguageGo(b *testing.B) {
	benchmarkLanguage(b, []byte("package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"Hello, World!\")\n}"))
}

func BenchmarkLanguageJSON(b *testing.B) {
	benchmarkLanguage(b, []byte("{\n  \"name\": \"test\",\n  \"version\": \"1.0.0\"\n}"))
}

func BenchmarkLanguageClassifier(b *testing.B) {
	benchmarkLanguage(b, []byte("hello"))
}
