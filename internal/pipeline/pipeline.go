// Package pipeline runs one channel export: resolve the channel, enumerate
// and fetch its videos, collect comments video by video, then write the
// workbook.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/yt-export/internal/models"
	"go.uber.org/zap"
)

// Stage names used in StageError.
const (
	StageResolve   = "resolve"
	StageEnumerate = "enumerate"
	StageDetails   = "details"
	StageComments  = "comments"
	StageExport    = "export"
	StageHistory   = "history"
)

// Source is the YouTube side of the pipeline.
type Source interface {
	ResolveChannelID(ctx context.Context, handle string) (string, error)
	ListVideoIDs(ctx context.Context, channelID string) ([]string, error)
	FetchVideoDetails(ctx context.Context, videoIDs []string) ([]models.VideoRecord, error)
	FetchComments(ctx context.Context, videoID string) ([]models.CommentRecord, error)
}

// Exporter persists the fetched records and returns where they were written.
type Exporter interface {
	Export(videos []models.VideoRecord, comments []models.CommentRecord) (string, error)
}

// Recorder stores a summary of each finished run.
type Recorder interface {
	StoreRun(run *models.ExportRun) error
}

// StageError is a non-fatal failure of one stage. VideoID is set for
// comment failures.
type StageError struct {
	Stage   string
	VideoID string
	Err     error
}

func (e *StageError) Error() string {
	if e.VideoID != "" {
		return fmt.Sprintf("%s %s: %v", e.Stage, e.VideoID, e.Err)
	}
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

// Result is the outcome of a run that got past channel resolution.
type Result struct {
	Handle    string
	ChannelID string
	Videos    []models.VideoRecord
	Comments  []models.CommentRecord
	FilePath  string
	Failures  []*StageError
}

// Exported reports whether the workbook was written
func (r *Result) Exported() bool {
	return r.FilePath != ""
}

// Pipeline sequences the export stages. Recorder and Progress are optional.
type Pipeline struct {
	source   Source
	exporter Exporter
	recorder Recorder
	logger   *zap.SugaredLogger

	// Progress receives the per-video comment progress bar. Nil disables it.
	Progress io.Writer
}

// New creates a pipeline. recorder may be nil.
func New(source Source, exporter Exporter, recorder Recorder, logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		source:   source,
		exporter: exporter,
		recorder: recorder,
		logger:   logger,
	}
}

// Run executes every stage once. Only a channel resolution failure is
// returned as an error; all later failures are collected on the result.
func (p *Pipeline) Run(ctx context.Context, handle string) (*Result, error) {
	channelID, err := p.source.ResolveChannelID(ctx, handle)
	if err != nil {
		p.logger.Errorf("Failed to resolve channel %s: %v", handle, err)
		return nil, &StageError{Stage: StageResolve, Err: err}
	}

	result := &Result{Handle: handle, ChannelID: channelID}
	p.logger.Infof("Fetching video data for channel: %s (ID: %s)", handle, channelID)

	videoIDs, err := p.source.ListVideoIDs(ctx, channelID)
	if err != nil {
		p.logger.Warnf("Video listing stopped early, continuing with %d videos: %v", len(videoIDs), err)
		result.addFailure(StageEnumerate, "", err)
	}

	result.Videos, err = p.source.FetchVideoDetails(ctx, videoIDs)
	if err != nil {
		p.logger.Warnf("Some video details could not be fetched: %v", err)
		result.addFailure(StageDetails, "", err)
	}
	p.logger.Infof("Fetched details for %d of %d videos", len(result.Videos), len(videoIDs))

	p.logger.Infof("Fetching comments data for videos in channel %s...", handle)
	bar := p.newProgressBar(len(result.Videos))
	for _, video := range result.Videos {
		comments, err := p.source.FetchComments(ctx, video.VideoID)
		if err != nil {
			p.logger.Warnf("Skipping comments for video %s: %v", video.VideoID, err)
			result.addFailure(StageComments, video.VideoID, err)
		}
		result.Comments = append(result.Comments, comments...)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	result.FilePath, err = p.exporter.Export(result.Videos, result.Comments)
	if err != nil {
		p.logger.Errorf("An error occurred while exporting to Excel: %v", err)
		result.addFailure(StageExport, "", err)
	} else {
		p.logger.Infof("Exported %d videos and %d comments to %s", len(result.Videos), len(result.Comments), result.FilePath)
	}

	p.record(result)
	return result, nil
}

func (p *Pipeline) newProgressBar(total int) *progressbar.ProgressBar {
	if p.Progress == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.Progress),
		progressbar.OptionSetDescription("comments"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
	)
}

func (p *Pipeline) record(result *Result) {
	if p.recorder == nil {
		return
	}

	run := models.NewExportRun(result.Handle, result.ChannelID)
	run.VideoCount = len(result.Videos)
	run.CommentCount = len(result.Comments)
	run.FilePath = result.FilePath
	run.Status = models.ExportStatusFailed
	if result.Exported() {
		run.Status = models.ExportStatusSaved
	}

	if err := p.recorder.StoreRun(run); err != nil {
		p.logger.Warnf("Failed to record export run: %v", err)
		result.addFailure(StageHistory, "", err)
	}
}

func (r *Result) addFailure(stage, videoID string, err error) {
	r.Failures = append(r.Failures, &StageError{Stage: stage, VideoID: videoID, Err: err})
}
