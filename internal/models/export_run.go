package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportStatus is the outcome of the export stage of a run
type ExportStatus string

const (
	ExportStatusSaved  ExportStatus = "saved"
	ExportStatusFailed ExportStatus = "failed"
)

// ExportRun represents a record in the export_runs table
type ExportRun struct {
	ID           string       `json:"id"`
	Handle       string       `json:"handle"`
	ChannelID    string       `json:"channelId"`
	VideoCount   int          `json:"videoCount"`
	CommentCount int          `json:"commentCount"`
	FilePath     string       `json:"filePath,omitempty"`
	Status       ExportStatus `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// NewExportRun stamps a fresh run with a random id and the current time
func NewExportRun(handle, channelID string) *ExportRun {
	return &ExportRun{
		ID:        uuid.NewString(),
		Handle:    handle,
		ChannelID: channelID,
		CreatedAt: time.Now().UTC(),
	}
}
