package media

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"github.com/mkuznetsov/videogen/internal/artifacts"
	"github.com/mkuznetsov/videogen/internal/metrics"
)

const (
	// maxNarrationChars bounds the text sent to the synthesizer to keep
	// latency reasonable.
	maxNarrationChars = 500

	speechSampleRate = 16000

	toneFrequency = 220.0
	toneSeconds   = 3
)

// voiceNames maps the API voice identifiers to the external
// synthesizer's voice names.
var voiceNames = map[string]string{
	"male":     "en-US-ChristopherNeural",
	"female":   "en-US-JennyNeural",
	"narrator": "en-GB-RyanNeural",
}

// SpeechAdapter produces the narration as a mono 16 kHz PCM WAV. The
// primary path shells out to the configured TTS command and resamples
// its output; the fallback synthesizes a fixed-duration tone so the
// pipeline always has audio with a known duration.
type SpeechAdapter struct {
	runner     *Runner
	ttsCommand string
	logger     *slog.Logger
}

// NewSpeechAdapter creates a SpeechAdapter. ttsCommand may be empty
// when no external synthesizer is configured.
func NewSpeechAdapter(runner *Runner, ttsCommand string, logger *slog.Logger) *SpeechAdapter {
	return &SpeechAdapter{runner: runner, ttsCommand: ttsCommand, logger: logger}
}

// Attempt synthesizes narration for the text into the task's temp scope
// and returns the WAV path.
func (a *SpeechAdapter) Attempt(ctx context.Context, scope *artifacts.Scope, text, voice string) (string, error) {
	text = truncateRunes(text, maxNarrationChars)

	if a.ttsCommand != "" {
		path, err := a.synthesize(ctx, scope, text, voice)
		if err == nil {
			return path, nil
		}
		a.logger.Warn("speech synthesis failed, using fallback tone", "error", err)
		metrics.StageFallbacks.WithLabelValues("speech").Inc()
	}

	path := scope.Path("voice_fallback.wav")
	if err := writeToneWAV(path, toneSeconds*time.Second); err != nil {
		return "", fmt.Errorf("write fallback audio: %w", err)
	}
	return path, nil
}

// truncateRunes caps a string at max characters, never splitting a
// UTF-8 sequence mid-rune.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func (a *SpeechAdapter) synthesize(ctx context.Context, scope *artifacts.Scope, text, voice string) (string, error) {
	voiceName, ok := voiceNames[voice]
	if !ok {
		voiceName = voiceNames["male"]
	}

	rawPath := scope.Path(fmt.Sprintf("voice_%s.mp3", uuid.New().String()[:8]))
	cmd := exec.CommandContext(ctx, a.ttsCommand,
		"--voice", voiceName,
		"--text", text,
		"--write-media", rawPath,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tts command: %w", err)
	}

	wavPath := scope.Path("voice.wav")
	err := a.runner.Run(ctx,
		"-y", "-i", rawPath,
		"-acodec", "pcm_s16le", "-ac", "1", "-ar", fmt.Sprint(speechSampleRate),
		wavPath,
	)
	if err != nil {
		return "", fmt.Errorf("resample narration: %w", err)
	}
	return wavPath, nil
}

// writeToneWAV writes a mono 16 kHz sine tone of the given duration.
func writeToneWAV(path string, dur time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav file: %w", err)
	}
	defer f.Close()

	samples := int(dur.Seconds() * speechSampleRate)
	data := make([]int, samples)
	for i := range data {
		t := float64(i) / speechSampleRate
		data[i] = int(math.Sin(2*math.Pi*toneFrequency*t) * 32767)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: speechSampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(f, speechSampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// AudioDuration reads the duration of a WAV file from its header,
// defaulting to 5 seconds when the file cannot be parsed.
func AudioDuration(path string) time.Duration {
	const fallback = 5 * time.Second

	f, err := os.Open(path)
	if err != nil {
		return fallback
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dur, err := dec.Duration()
	if err != nil || dur <= 0 {
		return fallback
	}
	return dur
}
