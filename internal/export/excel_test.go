package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yt-export/internal/models"
)

var fixedTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func fixtures() ([]models.VideoRecord, []models.CommentRecord) {
	videos := []models.VideoRecord{
		{VideoID: "V1", Title: "One", ViewCount: "10", LikeCount: "1", CommentCount: "1", Duration: "PT1M"},
		{VideoID: "V2", Title: "Two", ViewCount: "0", LikeCount: "0", CommentCount: "0", Duration: "PT2M"},
	}
	comments := []models.CommentRecord{
		{CommentID: "T1", CommentText: "top", Author: "a", PublishedDate: "2024-01-01T00:00:00Z", LikeCount: 2},
		{CommentID: "T1.r1", CommentText: "reply", Author: "b", PublishedDate: "2024-01-02T00:00:00Z", ReplyTo: "T1"},
	}
	return videos, comments
}

func readSheets(t *testing.T, path string) map[string][][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := make(map[string][][]string)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		require.NoError(t, err)
		sheets[name] = rows
	}
	return sheets
}

func TestExport_WritesBothSheets(t *testing.T) {
	dir := t.TempDir()
	exporter := &Exporter{Dir: dir, Now: func() time.Time { return fixedTime }}
	videos, comments := fixtures()

	path, err := exporter.Export(videos, comments)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "YouTube_Data_20240309_140507.xlsx"), path)

	sheets := readSheets(t, path)
	require.Len(t, sheets, 2)

	videoRows := sheets[VideoSheet]
	require.Len(t, videoRows, 3)
	assert.Equal(t, models.VideoHeaders, videoRows[0])
	assert.Equal(t, "V1", videoRows[1][0])
	assert.Equal(t, "10", videoRows[1][4])
	assert.Equal(t, "PT2M", videoRows[2][7])

	commentRows := sheets[CommentsSheet]
	require.Len(t, commentRows, 3)
	assert.Equal(t, models.CommentHeaders, commentRows[0])
	assert.Equal(t, "T1", commentRows[1][0])
	assert.Equal(t, "2", commentRows[1][4])
	if len(commentRows[1]) > 5 {
		assert.Empty(t, commentRows[1][5])
	}
	assert.Equal(t, "T1", commentRows[2][5])
}

func TestExport_EmptyInputsStillWriteHeaders(t *testing.T) {
	exporter := &Exporter{Dir: t.TempDir(), Now: func() time.Time { return fixedTime }}

	path, err := exporter.Export(nil, nil)
	require.NoError(t, err)

	sheets := readSheets(t, path)
	assert.Equal(t, [][]string{models.VideoHeaders}, sheets[VideoSheet])
	assert.Equal(t, [][]string{models.CommentHeaders}, sheets[CommentsSheet])
}

func TestExport_TwiceSameShapeDifferentFiles(t *testing.T) {
	exporter := &Exporter{Dir: t.TempDir(), Now: func() time.Time { return fixedTime }}
	videos, comments := fixtures()

	first, err := exporter.Export(videos, comments)
	require.NoError(t, err)
	second, err := exporter.Export(videos, comments)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, "YouTube_Data_20240309_140507_2.xlsx", filepath.Base(second))
	assert.Equal(t, readSheets(t, first), readSheets(t, second))
}

func TestExport_TimestampedNames(t *testing.T) {
	now := fixedTime
	exporter := &Exporter{Dir: t.TempDir(), Now: func() time.Time { return now }}

	first, err := exporter.Export(nil, nil)
	require.NoError(t, err)
	now = now.Add(time.Second)
	second, err := exporter.Export(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "YouTube_Data_20240309_140507.xlsx", filepath.Base(first))
	assert.Equal(t, "YouTube_Data_20240309_140508.xlsx", filepath.Base(second))
	assert.Less(t, filepath.Base(first), filepath.Base(second))
}

func TestExport_MissingDirectory(t *testing.T) {
	exporter := NewExporter(filepath.Join(t.TempDir(), "does-not-exist"))
	videos, comments := fixtures()

	path, err := exporter.Export(videos, comments)
	assert.Error(t, err)
	assert.Empty(t, path)
}
