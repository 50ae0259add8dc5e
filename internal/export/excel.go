// Package export writes fetched channel data to xlsx workbooks.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yt-export/internal/models"
)

const (
	VideoSheet    = "Video Data"
	CommentsSheet = "Comments Data"

	filePrefix      = "YouTube_Data_"
	fileExt         = ".xlsx"
	timestampLayout = "20060102_150405"
)

// Exporter writes workbooks into Dir, naming them after the current time.
type Exporter struct {
	Dir string
	Now func() time.Time
}

// NewExporter creates an exporter writing into dir
func NewExporter(dir string) *Exporter {
	return &Exporter{Dir: dir, Now: time.Now}
}

// Export writes videos and comments to a new two-sheet workbook and returns
// its path. The directory is not created; a missing directory is an error.
func (e *Exporter) Export(videos []models.VideoRecord, comments []models.CommentRecord) (string, error) {
	path, err := e.nextPath()
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), VideoSheet); err != nil {
		return "", fmt.Errorf("failed to name sheet %q: %w", VideoSheet, err)
	}
	if _, err := f.NewSheet(CommentsSheet); err != nil {
		return "", fmt.Errorf("failed to create sheet %q: %w", CommentsSheet, err)
	}

	videoRows := make([][]interface{}, len(videos))
	for i, v := range videos {
		videoRows[i] = v.Row()
	}
	if err := writeSheet(f, VideoSheet, models.VideoHeaders, videoRows); err != nil {
		return "", err
	}

	commentRows := make([][]interface{}, len(comments))
	for i, c := range comments {
		commentRows[i] = c.Row()
	}
	if err := writeSheet(f, CommentsSheet, models.CommentHeaders, commentRows); err != nil {
		return "", err
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return path, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// nextPath returns Dir/YouTube_Data_<timestamp>.xlsx, adding a numeric
// suffix when a workbook with that name already exists.
func (e *Exporter) nextPath() (string, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	base := filePrefix + now().Format(timestampLayout)

	for n := 1; ; n++ {
		name := base + fileExt
		if n > 1 {
			name = fmt.Sprintf("%s_%d%s", base, n, fileExt)
		}
		path := filepath.Join(e.Dir, name)

		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", path, err)
		}
	}
}
