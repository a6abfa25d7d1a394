package media

import (
	"context"
	"errors"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznetsov/videogen/internal/artifacts"
	"github.com/mkuznetsov/videogen/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// brokenRunner points at executables that do not exist, forcing every
// encoding-tool attempt onto the fallback path.
func brokenRunner(t *testing.T) *Runner {
	t.Helper()
	return NewRunner("/nonexistent/ffmpeg", "/nonexistent/ffprobe", newTestLogger())
}

func newScope(t *testing.T) *artifacts.Scope {
	t.Helper()
	store, err := artifacts.NewTempStore(t.TempDir())
	require.NoError(t, err)
	scope, err := store.Scope("test-task")
	require.NoError(t, err)
	return scope
}

func TestImageAdapter_PlaceholderRender(t *testing.T) {
	scope := newScope(t)
	adapter := NewImageAdapter(nil, newTestLogger())

	path, err := adapter.Attempt(context.Background(), scope, domain.Scene{
		Index:  2,
		Prompt: "celebration scene with confetti, dramatic lighting",
	})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, frameWidth, img.Bounds().Dx())
	assert.Equal(t, frameHeight, img.Bounds().Dy())
}

// Placeholder text truncation must cut on rune boundaries so multibyte
// prompts render without mangled characters.
func TestImageAdapter_MultibytePromptRenders(t *testing.T) {
	scope := newScope(t)
	adapter := NewImageAdapter(nil, newTestLogger())

	path, err := adapter.Attempt(context.Background(), scope, domain.Scene{
		Index:  0,
		Prompt: strings.Repeat("ж", 120),
	})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = jpeg.Decode(f)
	assert.NoError(t, err)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short ascii", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut ascii", "hello", 3, "hel"},
		{"cut multibyte", "привет", 4, "прив"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateRunes(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

type failingSynth struct{}

func (failingSynth) Synthesize(ctx context.Context, prompt, destPath string) error {
	return errors.New("capability unavailable")
}

func TestImageAdapter_SynthesizerFailureDegrades(t *testing.T) {
	scope := newScope(t)
	adapter := NewImageAdapter(failingSynth{}, newTestLogger())

	path, err := adapter.Attempt(context.Background(), scope, domain.Scene{Index: 0, Prompt: "a scene"})
	require.NoError(t, err, "synthesizer failure must not escape the adapter")

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSpeechAdapter_FallbackTone(t *testing.T) {
	scope := newScope(t)
	adapter := NewSpeechAdapter(brokenRunner(t), "", newTestLogger())

	path, err := adapter.Attempt(context.Background(), scope, "Some narration text.", "male")
	require.NoError(t, err)

	dur := AudioDuration(path)
	assert.InDelta(t, float64(toneSeconds*time.Second), float64(dur), float64(50*time.Millisecond))
}

func TestSpeechAdapter_BrokenTTSCommandDegrades(t *testing.T) {
	scope := newScope(t)
	adapter := NewSpeechAdapter(brokenRunner(t), "/nonexistent/tts", newTestLogger())

	path, err := adapter.Attempt(context.Background(), scope, "Narration.", "narrator")
	require.NoError(t, err, "TTS failure must not escape the adapter")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(44), "fallback WAV should carry samples")
}

func TestAudioDuration_UnreadableFileDefaults(t *testing.T) {
	assert.Equal(t, 5*time.Second, AudioDuration("/does/not/exist.wav"))
}

func TestAvatarAdapter_FallbackClip(t *testing.T) {
	scope := newScope(t)

	audioPath := scope.Path("voice.wav")
	require.NoError(t, writeToneWAV(audioPath, time.Second))

	adapter := NewAvatarAdapter(brokenRunner(t), 30, newTestLogger())
	path, err := adapter.Attempt(context.Background(), scope, "ai", audioPath)
	require.NoError(t, err)

	assertMJPEGAVI(t, path)

	// With the probe tool missing, the clip length comes from the WAV
	// header: 1s of audio at 30 fps. The avih total-frames field sits
	// right after the four leading dwords of the header chunk.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(30), leU32(data[48:52]))
}

func TestEncodeAdapter_FallbackSlideshow(t *testing.T) {
	scope := newScope(t)

	imgAdapter := NewImageAdapter(nil, newTestLogger())
	var images []string
	for i := 0; i < 2; i++ {
		p, err := imgAdapter.Attempt(context.Background(), scope, domain.Scene{Index: i, Prompt: "scene"})
		require.NoError(t, err)
		images = append(images, p)
	}

	output, err := artifacts.NewOutputStore(t.TempDir(), 24*time.Hour)
	require.NoError(t, err)
	adapter := NewEncodeAdapter(brokenRunner(t), output, 1, 10, newTestLogger())

	slideshow, err := adapter.BuildSlideshow(context.Background(), scope, images, []string{"cinematic"})
	require.NoError(t, err)
	assertMJPEGAVI(t, slideshow)

	// Mux degrades to keeping the silent slideshow.
	muxed, err := adapter.MuxAudio(context.Background(), scope, slideshow, scope.Path("missing.wav"))
	require.NoError(t, err)
	assertSameSize(t, slideshow, muxed)

	// Overlay degrades to keeping the clip without the avatar.
	overlaid, err := adapter.OverlayAvatar(context.Background(), scope, muxed, scope.Path("missing.avi"))
	require.NoError(t, err)
	assertSameSize(t, muxed, overlaid)

	// Finalize promotes into the durable store.
	final, err := adapter.Finalize(overlaid, "artifact-1")
	require.NoError(t, err)
	_, err = os.Stat(final)
	assert.NoError(t, err)
}

func TestEncodeAdapter_FinalizeMissingSourceFails(t *testing.T) {
	output, err := artifacts.NewOutputStore(t.TempDir(), 24*time.Hour)
	require.NoError(t, err)
	adapter := NewEncodeAdapter(brokenRunner(t), output, 3, 30, newTestLogger())

	_, err = adapter.Finalize("/does/not/exist.mp4", "artifact-x")
	assert.Error(t, err, "finalize is the one sub-operation allowed to fail")
}

func TestSlideshowFilter_StyleSelection(t *testing.T) {
	tests := []struct {
		name   string
		styles []string
		want   string
	}{
		{"cinematic", []string{"cinematic"}, "zoom+0.002"},
		{"reels", []string{"reels"}, "zoom+0.003"},
		{"default", []string{"documentary"}, "zoom+0.0015"},
		{"empty", nil, "zoom+0.0015"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := slideshowFilter(tt.styles)
			assert.Contains(t, filter, tt.want)
			assert.Contains(t, filter, "fade=t=in")
			assert.Contains(t, filter, "fade=t=out")
		})
	}
}

func TestAVIWriter_Layout(t *testing.T) {
	path := t.TempDir() + "/clip.avi"
	w, err := newAVIWriter(path, 64, 64, 10)
	require.NoError(t, err)

	frame := []byte{0xFF, 0xD8, 0xFF, 0xD9, 0x01} // odd length forces padding
	require.NoError(t, w.AddFrame(frame))
	require.NoError(t, w.AddFrame(frame))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "AVI ", string(data[8:12]))
	assert.Contains(t, string(data), "MJPG")
	assert.Contains(t, string(data), "movi")
	assert.Contains(t, string(data), "idx1")
	assert.Equal(t, uint32(len(data)-8), leU32(data[4:8]), "RIFF size must cover the file")
}

func assertMJPEGAVI(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 224)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "AVI ", string(data[8:12]))
}

func assertSameSize(t *testing.T, a, b string) {
	t.Helper()
	ai, err := os.Stat(a)
	require.NoError(t, err)
	bi, err := os.Stat(b)
	require.NoError(t, err)
	assert.Equal(t, ai.Size(), bi.Size())
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
