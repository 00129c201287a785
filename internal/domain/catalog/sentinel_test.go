package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelIsLocaleStable(t *testing.T) {
	assert.Equal(t, Recommended, Sentinel())
}

func TestDisplaySentinel(t *testing.T) {
	cases := []struct {
		locale string
		want   string
	}{
		{"en-US", "Recommended"},
		{"en", "Recommended"},
		{"zh-Hans", "推荐"},
		{"zh-CN", "推荐"},
		{"zh-TW", "推薦"},
		{"ja-JP", "おすすめ"},
		{"ko", "추천"},
		{"de-DE", "Empfohlen"},
		{"fr", "Recommandé"},
		{"pt-BR", "Recomendado"},
		{"sw", "Recommended"}, // unsupported falls back to the default
		{"not a locale", "Recommended"},
		{"", "Recommended"},
	}
	for _, tc := range cases {
		t.Run(tc.locale, func(t *testing.T) {
			assert.Equal(t, tc.want, DisplaySentinel(tc.locale))
		})
	}
}
