package competitor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMock_Deterministic(t *testing.T) {
	a := GenerateMock("https://example.com", "eco bottles", "fitness")
	b := GenerateMock("https://example.com", "eco bottles", "fitness")

	assert.Equal(t, a, b)
}

func TestGenerateMock_MetricFormula(t *testing.T) {
	url := "https://example.com"
	brandContext := "eco bottles"
	// seed = len("example.com") + len("eco bottles") = 11 + 11 = 22
	seed := 22

	features := GenerateMock(url, brandContext, "tech")
	require.NotNil(t, features.Metrics)

	expect := func(base int) int {
		v := base + seed%30
		if v > 98 {
			v = 98
		}
		return v
	}

	assert.Equal(t, expect(70), features.Metrics["Visual Appeal"])
	assert.Equal(t, expect(60), features.Metrics["Market Authority"])
	assert.Equal(t, expect(50), features.Metrics["Social Engagement"])
}

func TestGenerateMock_MetricsCappedAt98(t *testing.T) {
	// Sweep brand-context lengths to cover every seed%30 value
	for i := 0; i < 40; i++ {
		ctx := strings.Repeat("x", i)
		features := GenerateMock("https://example.com", ctx, "")
		for label, v := range features.Metrics {
			assert.LessOrEqual(t, v, 98, "metric %s exceeded cap", label)
			assert.Greater(t, v, 0)
		}
	}
}

func TestGenerateMock_VariesWithInput(t *testing.T) {
	a := GenerateMock("https://short.io", "brand", "tech")
	b := GenerateMock("https://a-much-longer-hostname.example.com", "a completely different brand context", "tech")

	assert.NotEqual(t, a.Metrics, b.Metrics)
}

func TestGenerateMock_CompleteShape(t *testing.T) {
	features := GenerateMock("https://example.com", "ctx", "")

	assert.NotEmpty(t, features.Title)
	assert.NotEmpty(t, features.Headings)
	assert.NotEmpty(t, features.Keywords)
	assert.NotEmpty(t, features.ValuePropositions)
	assert.NotEmpty(t, features.PricingSnippets)
	assert.NotEmpty(t, features.Testimonials)
	assert.Len(t, features.Strengths, 3)
	assert.Len(t, features.Weaknesses, 2)
	assert.Greater(t, features.WordCount, 0)
	assert.Greater(t, features.DesignFlags.ImageCount, 0)
}

func TestHostnameOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/path?q=1", "www.example.com"},
		{"http://example.com", "example.com"},
		{"example.com/pricing", "example.com"},
		{"example.com", "example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, hostnameOf(tt.in), "input %q", tt.in)
	}
}
