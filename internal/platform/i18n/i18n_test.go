package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
		ok    bool
	}{
		{name: "exact english", value: "en-US", want: "en-US", ok: true},
		{name: "bare chinese", value: "zh", want: "zh-CN", ok: true},
		{name: "simplified script", value: "zh-Hans", want: "zh-CN", ok: true},
		{name: "unsupported", value: "fr", ok: false},
		{name: "garbage", value: "not a tag", ok: false},
		{name: "blank", value: "  ", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tag, ok := ParseTag(tc.value)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, tag.String())
			}
		})
	}
}

func TestMatchTagsFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultTag(), MatchTags(nil))
	assert.Equal(t, "zh-CN", MatchTags([]language.Tag{language.MustParse("zh-CN")}).String())
}

func TestSupportedTagsReturnsCopy(t *testing.T) {
	tags := SupportedTags()
	tags[0] = language.French
	assert.Equal(t, DefaultTag(), SupportedTags()[0])
}
