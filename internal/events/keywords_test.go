package events

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywords(t *testing.T) {
	kw := Keywords(&EventRecord{Title: "The Annual Tech-Talk:", Description: "AI & You!"})
	assert.Equal(t, map[string]struct{}{"annual": {}, "techtalk": {}, "ai": {}}, kw)
}

func TestKeywordsCapsTokens(t *testing.T) {
	words := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		words = append(words, fmt.Sprintf("word%d", i))
	}
	kw := Keywords(&EventRecord{Title: strings.Join(words, " ")})

	assert.Len(t, kw, 20)
	assert.Contains(t, kw, "word0")
	assert.NotContains(t, kw, "word20")
}

func TestJaccard(t *testing.T) {
	a := map[string]struct{}{"go": {}, "rust": {}}
	b := map[string]struct{}{"go": {}, "zig": {}}

	assert.InDelta(t, 1.0/3.0, Jaccard(a, b), 1e-9)
	assert.Equal(t, 1.0, Jaccard(a, a))
	assert.Equal(t, 0.0, Jaccard(nil, nil))
	assert.Equal(t, 0.0, Jaccard(a, nil))
}
