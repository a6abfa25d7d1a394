package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"VG_ENV" default:"development"`

	HTTPPort    int           `envconfig:"VG_HTTP_PORT" default:"8000"`
	HTTPTimeout time.Duration `envconfig:"VG_HTTP_TIMEOUT" default:"30s"`

	OutputDir string `envconfig:"VG_OUTPUT_DIR" default:"./output"`
	TempDir   string `envconfig:"VG_TEMP_DIR" default:"./temp"`

	TaskTTL         time.Duration `envconfig:"VG_TASK_TTL" default:"1h"`
	OutputRetention time.Duration `envconfig:"VG_OUTPUT_RETENTION" default:"24h"`

	SceneSeconds int `envconfig:"VG_SCENE_SECONDS" default:"3"`
	FrameRate    int `envconfig:"VG_FRAME_RATE" default:"30"`

	FFmpegPath  string `envconfig:"VG_FFMPEG_PATH" default:"ffmpeg"`
	FFprobePath string `envconfig:"VG_FFPROBE_PATH" default:"ffprobe"`

	// TTSCommand is the external speech synthesizer executable, e.g. edge-tts.
	// Empty means the capability is unavailable and the fallback tone is used.
	TTSCommand string `envconfig:"VG_TTS_COMMAND" default:""`

	ShutdownTimeout time.Duration `envconfig:"VG_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"VG_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"VG_LOG_FORMAT" default:"json"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.TempDir == "" {
		return fmt.Errorf("temp directory cannot be empty")
	}

	if c.TaskTTL <= 0 {
		return fmt.Errorf("task TTL must be positive: %s", c.TaskTTL)
	}
	if c.OutputRetention <= 0 {
		return fmt.Errorf("output retention must be positive: %s", c.OutputRetention)
	}

	if c.SceneSeconds <= 0 {
		return fmt.Errorf("scene seconds must be positive: %d", c.SceneSeconds)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive: %d", c.FrameRate)
	}

	return nil
}
