package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yt-export/internal/models"
	"github.com/yt-export/internal/pipeline"
	"go.uber.org/zap"
)

type fakeRunner struct {
	result  *pipeline.Result
	err     error
	handles []string
}

func (f *fakeRunner) Run(ctx context.Context, handle string) (*pipeline.Result, error) {
	f.handles = append(f.handles, handle)
	return f.result, f.err
}

type fakeHistory struct {
	runs  []models.ExportRun
	err   error
	limit int
}

func (f *fakeHistory) ListRuns(limit int) ([]models.ExportRun, error) {
	f.limit = limit
	return f.runs, f.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := NewServer(&fakeRunner{}, nil, zap.NewNop().Sugar())

	w := doRequest(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateExport(t *testing.T) {
	runner := &fakeRunner{result: &pipeline.Result{
		Handle:    "@chan",
		ChannelID: "C1",
		Videos:    []models.VideoRecord{{VideoID: "V1"}, {VideoID: "V2"}},
		Comments:  []models.CommentRecord{{CommentID: "T1"}},
		FilePath:  "/tmp/YouTube_Data_20240101_000000.xlsx",
		Failures: []*pipeline.StageError{
			{Stage: pipeline.StageComments, VideoID: "V2", Err: errors.New("comments disabled")},
		},
	}}
	s := NewServer(runner, nil, zap.NewNop().Sugar())

	w := doRequest(s, http.MethodPost, "/exports", `{"handle":"@chan"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"@chan"}, runner.handles)

	var resp exportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "C1", resp.ChannelID)
	assert.Equal(t, 2, resp.VideoCount)
	assert.Equal(t, 1, resp.CommentCount)
	assert.True(t, resp.Exported)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "V2", resp.Failures[0].VideoID)
}

func TestCreateExport_BadRequest(t *testing.T) {
	runner := &fakeRunner{}
	s := NewServer(runner, nil, zap.NewNop().Sugar())

	for _, body := range []string{``, `{}`, `{"handle":"@"}`, `not json`} {
		w := doRequest(s, http.MethodPost, "/exports", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Empty(t, runner.handles)
}

func TestCreateExport_ChannelNotFound(t *testing.T) {
	runner := &fakeRunner{err: &pipeline.StageError{
		Stage: pipeline.StageResolve,
		Err:   fmt.Errorf("%w for handle: @ghost", ErrChannelNotFound),
	}}
	s := NewServer(runner, nil, zap.NewNop().Sugar())

	w := doRequest(s, http.MethodPost, "/exports", `{"handle":"@ghost"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateExport_ResolveTransportError(t *testing.T) {
	runner := &fakeRunner{err: &pipeline.StageError{Stage: pipeline.StageResolve, Err: errors.New("forbidden")}}
	s := NewServer(runner, nil, zap.NewNop().Sugar())

	w := doRequest(s, http.MethodPost, "/exports", `{"handle":"@chan"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestListExports_Disabled(t *testing.T) {
	s := NewServer(&fakeRunner{}, nil, zap.NewNop().Sugar())

	w := doRequest(s, http.MethodGet, "/exports", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListExports(t *testing.T) {
	history := &fakeHistory{runs: []models.ExportRun{
		{ID: "r1", Handle: "@chan", ChannelID: "C1", VideoCount: 2, Status: models.ExportStatusSaved},
	}}
	s := NewServer(&fakeRunner{}, history, zap.NewNop().Sugar())

	w := doRequest(s, http.MethodGet, "/exports?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, history.limit)

	var runs []models.ExportRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0].ID)

	doRequest(s, http.MethodGet, "/exports", "")
	assert.Equal(t, defaultHistoryLimit, history.limit)

	doRequest(s, http.MethodGet, "/exports?limit=100000", "")
	assert.Equal(t, maxHistoryLimit, history.limit)

	w = doRequest(s, http.MethodGet, "/exports?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListExports_Error(t *testing.T) {
	history := &fakeHistory{err: errors.New("db down")}
	s := NewServer(&fakeRunner{}, history, zap.NewNop().Sugar())

	w := doRequest(s, http.MethodGet, "/exports", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
