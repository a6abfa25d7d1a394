// Package pipeline drives the sequential video-generation stages for
// one task and publishes progress into the task registry.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mkuznetsov/videogen/internal/artifacts"
	"github.com/mkuznetsov/videogen/internal/domain"
	errpkg "github.com/mkuznetsov/videogen/internal/errors"
	"github.com/mkuznetsov/videogen/internal/metrics"
	"github.com/mkuznetsov/videogen/internal/registry"
	"github.com/mkuznetsov/videogen/internal/script"
)

// ImageStage renders one still per scene.
type ImageStage interface {
	Attempt(ctx context.Context, scope *artifacts.Scope, scene domain.Scene) (string, error)
}

// SpeechStage produces the narration audio.
type SpeechStage interface {
	Attempt(ctx context.Context, scope *artifacts.Scope, text, voice string) (string, error)
}

// AvatarStage produces the talking-head clip.
type AvatarStage interface {
	Attempt(ctx context.Context, scope *artifacts.Scope, avatarType, audioPath string) (string, error)
}

// EncodeStage composes the final video.
type EncodeStage interface {
	BuildSlideshow(ctx context.Context, scope *artifacts.Scope, imagePaths []string, styles []string) (string, error)
	MuxAudio(ctx context.Context, scope *artifacts.Scope, videoPath, audioPath string) (string, error)
	OverlayAvatar(ctx context.Context, scope *artifacts.Scope, videoPath, avatarPath string) (string, error)
	Finalize(srcPath, artifactID string) (string, error)
}

// Orchestrator validates submissions and runs the generation pipeline,
// one goroutine per task. It is the sole mutator of each task it owns.
type Orchestrator struct {
	registry  *registry.Registry
	segmenter *script.Segmenter
	images    ImageStage
	speech    SpeechStage
	avatar    AvatarStage
	encode    EncodeStage
	temp      *artifacts.TempStore
	logger    *slog.Logger
}

// New wires an Orchestrator from its collaborators.
func New(
	reg *registry.Registry,
	segmenter *script.Segmenter,
	images ImageStage,
	speech SpeechStage,
	avatar AvatarStage,
	encode EncodeStage,
	temp *artifacts.TempStore,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		registry:  reg,
		segmenter: segmenter,
		images:    images,
		speech:    speech,
		avatar:    avatar,
		encode:    encode,
		temp:      temp,
		logger:    logger,
	}
}

// Submit validates the request synchronously, creates the task and
// starts its pipeline run in the background. Invalid requests never
// create a task.
func (o *Orchestrator) Submit(req domain.GenerateRequest) (string, error) {
	if strings.TrimSpace(req.Script) == "" {
		return "", errpkg.ErrEmptyScript
	}
	if utf8.RuneCountInString(req.Script) > 1000 {
		return "", errpkg.ErrScriptTooLong
	}

	task := o.registry.Create(req)
	metrics.TasksCreated.Inc()

	go o.run(task.ID, req)

	o.logger.Info("generation task started", "task_id", task.ID, "script_len", utf8.RuneCountInString(req.Script))
	return task.ID, nil
}

// run drives the stages strictly sequentially. Adapters self-heal, so
// errors here mean local I/O trouble or a failed finalize; any of them,
// or a panic, transitions the task to Failed. The temp scope is
// released unconditionally.
func (o *Orchestrator) run(taskID string, req domain.GenerateRequest) {
	started := time.Now()
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("pipeline panic", "task_id", taskID, "panic", r)
			o.fail(taskID, fmt.Sprintf("internal error: %v", r))
		}
		metrics.PipelineDuration.Observe(time.Since(started).Seconds())
	}()

	scope, err := o.temp.Scope(taskID)
	if err != nil {
		o.fail(taskID, err.Error())
		return
	}
	defer scope.Release()

	o.registry.Update(taskID, 10, "Processing script...")
	scenes := o.segmenter.Segment(req.Script, req.Style)

	o.registry.Update(taskID, 20, "Generating images...")
	imagePaths := make([]string, 0, len(scenes))
	for i, scene := range scenes {
		path, err := o.images.Attempt(ctx, scope, scene)
		if err != nil {
			o.fail(taskID, err.Error())
			return
		}
		imagePaths = append(imagePaths, path)

		progress := 20 + (i+1)*15
		if progress > 50 {
			progress = 50
		}
		o.registry.Update(taskID, progress, "Generating images...")
	}

	o.registry.Update(taskID, 50, "Generating voiceover...")
	audioPath, err := o.speech.Attempt(ctx, scope, req.Script, req.Voice)
	if err != nil {
		o.fail(taskID, err.Error())
		return
	}

	o.registry.Update(taskID, 60, "Creating avatar...")
	var avatarPath string
	if req.Avatar != "" && req.Avatar != "none" {
		avatarPath, err = o.avatar.Attempt(ctx, scope, req.Avatar, audioPath)
		if err != nil {
			o.fail(taskID, err.Error())
			return
		}
	}

	o.registry.Update(taskID, 70, "Composing video...")
	slideshow, err := o.encode.BuildSlideshow(ctx, scope, imagePaths, req.Style)
	if err != nil {
		o.fail(taskID, err.Error())
		return
	}

	muxed, err := o.encode.MuxAudio(ctx, scope, slideshow, audioPath)
	if err != nil {
		o.fail(taskID, err.Error())
		return
	}

	composed := muxed
	if avatarPath != "" {
		composed, err = o.encode.OverlayAvatar(ctx, scope, muxed, avatarPath)
		if err != nil {
			o.fail(taskID, err.Error())
			return
		}
	}

	artifactID := uuid.New().String()
	if _, err := o.encode.Finalize(composed, artifactID); err != nil {
		o.fail(taskID, err.Error())
		return
	}

	o.registry.Complete(taskID, artifactID)
	metrics.TasksCompleted.Inc()
	o.logger.Info("generation task completed", "task_id", taskID, "artifact_id", artifactID, "duration", time.Since(started))
}

func (o *Orchestrator) fail(taskID, message string) {
	o.registry.Fail(taskID, message)
	metrics.TasksFailed.Inc()
	o.logger.Error("generation task failed", "task_id", taskID, "error", message)
}
