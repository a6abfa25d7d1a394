// Package script turns raw narration text into a bounded sequence of
// visual scene prompts.
package script

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mkuznetsov/videogen/internal/domain"
)

// MaxScenes caps how many sentences produce a visual scene. Excess
// script content is dropped from image generation but still narrated.
const MaxScenes = 5

const fallbackScene = "professional scene, cinematic, 4K"

var sceneTemplates = []string{
	"%s cinematic shot, 4K, professional photography, detailed",
	"%s dramatic lighting, epic composition, movie still",
	"%s dynamic angle, shallow depth of field, color graded",
	"%s professional cinematography, cinematic lighting, 8K",
}

var styleModifiers = map[string]string{
	"cinematic":   "cinematic, movie scene, professional lighting",
	"reels":       "vertical video, social media, trendy, modern",
	"dark":        "dark theme, dramatic lighting, moody, contrast",
	"documentary": "documentary style, educational, informative",
	"corporate":   "professional, business, clean, modern office",
	"animated":    "animated graphics, motion design, colorful",
}

// keywordVisuals maps script keywords to concrete visual phrases, first
// match wins.
var keywordVisuals = []struct {
	keyword string
	visual  string
}{
	{"work", "person working at desk with laptop"},
	{"hard", "determined person overcoming challenges"},
	{"success", "celebration scene with confetti"},
	{"learn", "person studying with books and tablet"},
	{"achieve", "person reaching goal, triumphant"},
	{"future", "futuristic technology, innovation"},
	{"team", "team collaborating in modern office"},
	{"growth", "plant growing, progress visualization"},
	{"technology", "advanced tech, digital interface"},
	{"business", "professional meeting in office"},
	{"motivation", "inspirational sunrise scene"},
	{"productivity", "organized workspace, efficiency"},
	{"leadership", "person leading team meeting"},
	{"innovation", "creative brainstorming session"},
	{"digital", "digital transformation visualization"},
}

// Segmenter derives visual prompts from script sentences. Template
// selection is randomized per call and may vary across runs.
type Segmenter struct {
	rand *rand.Rand
}

// New creates a Segmenter seeded from the given source, or the shared
// default source when seed is nil.
func New(r *rand.Rand) *Segmenter {
	return &Segmenter{rand: r}
}

// Segment splits the script into at most MaxScenes ordered scenes, each
// carrying a synthesized visual prompt. It always returns at least one
// scene so the pipeline has an image to generate.
func (s *Segmenter) Segment(script string, styles []string) []domain.Scene {
	sentences := splitSentences(script)

	var scenes []domain.Scene
	for i, sentence := range sentences {
		if i >= MaxScenes {
			break
		}
		scenes = append(scenes, domain.Scene{
			Index:  i,
			Prompt: s.buildPrompt(sentenceToVisual(sentence), styles),
		})
	}

	if len(scenes) == 0 {
		scenes = []domain.Scene{{Index: 0, Prompt: fallbackScene}}
	}
	return scenes
}

func (s *Segmenter) buildPrompt(visual string, styles []string) string {
	tmpl := sceneTemplates[s.intn(len(sceneTemplates))]
	prompt := fmt.Sprintf(tmpl, visual)

	for _, style := range styles {
		if mod, ok := styleModifiers[strings.ToLower(style)]; ok {
			return prompt + ", " + mod
		}
	}
	return prompt
}

func (s *Segmenter) intn(n int) int {
	if s.rand != nil {
		return s.rand.Intn(n)
	}
	return rand.Intn(n)
}

func splitSentences(script string) []string {
	normalized := strings.NewReplacer("\n", " ", "\r", " ", "!", ".", "?", ".").Replace(script)

	var sentences []string
	for _, part := range strings.Split(normalized, ".") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// sentenceToVisual converts a sentence into a visual description via
// the keyword table, falling back to a truncated restatement.
func sentenceToVisual(sentence string) string {
	lower := strings.ToLower(sentence)

	for _, kv := range keywordVisuals {
		if strings.Contains(lower, kv.keyword) {
			return kv.visual
		}
	}

	if runes := []rune(sentence); len(runes) > 50 {
		return "scene representing: " + string(runes[:50]) + "..."
	}
	return "professional cinematic scene"
}
