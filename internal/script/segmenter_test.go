package script

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSegmenter() *Segmenter {
	return New(rand.New(rand.NewSource(1)))
}

func TestSegment_KeywordMatches(t *testing.T) {
	s := newTestSegmenter()

	scenes := s.Segment("We work hard. We achieve success.", nil)
	require.Len(t, scenes, 2)

	assert.Contains(t, scenes[0].Prompt, "person working at desk with laptop")
	assert.Contains(t, scenes[1].Prompt, "person reaching goal, triumphant")

	for i, scene := range scenes {
		assert.Equal(t, i, scene.Index)
		assert.True(t, isTemplated(scene.Prompt), "prompt %q should use a cinematic template", scene.Prompt)
	}
}

func TestSegment_NoKeywords(t *testing.T) {
	s := newTestSegmenter()

	scenes := s.Segment("The cat sat quietly.", nil)
	require.Len(t, scenes, 1)
	assert.Contains(t, scenes[0].Prompt, "professional cinematic scene")
}

func TestSegment_LongSentenceTruncated(t *testing.T) {
	s := newTestSegmenter()

	sentence := "A quiet village nestled between misty rolling green hills far away"
	scenes := s.Segment(sentence+".", nil)
	require.Len(t, scenes, 1)
	assert.Contains(t, scenes[0].Prompt, "scene representing: "+sentence[:50]+"...")
}

// Truncation counts characters, so a multibyte sentence is cut on a
// rune boundary and the prompt stays valid UTF-8.
func TestSegment_LongMultibyteSentenceTruncated(t *testing.T) {
	s := newTestSegmenter()

	sentence := strings.Repeat("ж", 60)
	scenes := s.Segment(sentence+".", nil)
	require.Len(t, scenes, 1)
	assert.True(t, utf8.ValidString(scenes[0].Prompt))
	assert.Contains(t, scenes[0].Prompt, "scene representing: "+strings.Repeat("ж", 50)+"...")
}

func TestSegment_CapsAtFiveScenes(t *testing.T) {
	s := newTestSegmenter()

	script := "One. Two. Three. Four. Five. Six. Seven."
	scenes := s.Segment(script, nil)
	assert.Len(t, scenes, MaxScenes)
}

func TestSegment_EmptyScriptFallback(t *testing.T) {
	s := newTestSegmenter()

	for _, input := range []string{"", "   ", "...", "\n\n"} {
		scenes := s.Segment(input, nil)
		require.Len(t, scenes, 1, "input %q", input)
		assert.Equal(t, fallbackScene, scenes[0].Prompt)
	}
}

func TestSegment_StyleModifierAppended(t *testing.T) {
	s := newTestSegmenter()

	scenes := s.Segment("We work hard.", []string{"dark"})
	require.Len(t, scenes, 1)
	assert.True(t, strings.HasSuffix(scenes[0].Prompt, "dark theme, dramatic lighting, moody, contrast"))
}

func TestSegment_UnknownStyleIgnored(t *testing.T) {
	s := newTestSegmenter()

	scenes := s.Segment("We work hard.", []string{"vaporwave"})
	require.Len(t, scenes, 1)
	for _, mod := range styleModifiers {
		assert.NotContains(t, scenes[0].Prompt, mod)
	}
}

func TestSegment_SentencePunctuation(t *testing.T) {
	s := newTestSegmenter()

	scenes := s.Segment("Will we succeed? We work!", nil)
	assert.Len(t, scenes, 2)
}

func isTemplated(prompt string) bool {
	for _, tmpl := range sceneTemplates {
		suffix := strings.TrimPrefix(tmpl, "%s")
		if strings.Contains(prompt, suffix) {
			return true
		}
	}
	return false
}
