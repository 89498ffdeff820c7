package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apfk88/heartglance/internal/domain"
	apperrors "github.com/apfk88/heartglance/internal/errors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(path, body string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestHandleIngestReading_Accepted(t *testing.T) {
	recorder := &fakeRecorder{}
	srv := newTestServer(t, recorder, &fakeProvider{})

	rec, c := postJSON("/api/readings", `{"bpm":72,"isSharing":true}`)
	err := srv.handleIngestReading(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"accepted"}`, rec.Body.String())
	require.Len(t, recorder.recorded(), 1)
	assert.Equal(t, 72, recorder.recorded()[0])
	assert.True(t, recorder.statuses[0].IsSharing)
	assert.False(t, recorder.statuses[0].IsViewing)
}

func TestHandleIngestReading_ImplausibleBPM(t *testing.T) {
	recorder := &fakeRecorder{recordErr: domain.ErrImplausibleReading}
	srv := newTestServer(t, recorder, &fakeProvider{})

	_, c := postJSON("/api/readings", `{"bpm":999}`)
	err := srv.handleIngestReading(c)

	require.Error(t, err)
	var structured *apperrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, apperrors.TypeValidation, structured.Type)
	assert.Equal(t, 999, structured.Context["bpm"])
}

func TestHandleIngestReading_InvalidBody(t *testing.T) {
	srv := newTestServer(t, &fakeRecorder{}, &fakeProvider{})

	_, c := postJSON("/api/readings", `{not json`)
	err := srv.handleIngestReading(c)

	require.Error(t, err)
	var structured *apperrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, apperrors.TypeValidation, structured.Type)
}

func TestHandleIngestReading_StoreFailure(t *testing.T) {
	recorder := &fakeRecorder{recordErr: errors.New("redis down")}
	srv := newTestServer(t, recorder, &fakeProvider{})

	_, c := postJSON("/api/readings", `{"bpm":72}`)
	err := srv.handleIngestReading(c)

	require.Error(t, err)
	var structured *apperrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, apperrors.TypeInternal, structured.Type)
}

func TestHandleEndStream(t *testing.T) {
	recorder := &fakeRecorder{}
	srv := newTestServer(t, recorder, &fakeProvider{})

	rec, c := postJSON("/api/stream/end", "")
	err := srv.handleEndStream(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ended"}`, rec.Body.String())
	assert.Equal(t, 1, recorder.endCalls)
}

func TestHandleEndStream_Failure(t *testing.T) {
	recorder := &fakeRecorder{endErr: errors.New("reset failed")}
	srv := newTestServer(t, recorder, &fakeProvider{})

	_, c := postJSON("/api/stream/end", "")
	err := srv.handleEndStream(c)

	require.Error(t, err)
	var structured *apperrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, apperrors.TypeInternal, structured.Type)
}

func TestHandleCurrentActivity_Live(t *testing.T) {
	avg := 98
	provider := &fakeProvider{
		content: domain.ContentState{BPM: 101, Average: &avg, IsSharing: true},
		live:    true,
	}
	srv := newTestServer(t, &fakeRecorder{}, provider)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/activity", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := srv.handleCurrentActivity(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bpm":101`)
	assert.Contains(t, rec.Body.String(), `"average":98`)
	assert.Contains(t, rec.Body.String(), `"isSharing":true`)
}

func TestHandleCurrentActivity_NoSession(t *testing.T) {
	srv := newTestServer(t, &fakeRecorder{}, &fakeProvider{live: false})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/activity", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := srv.handleCurrentActivity(c)

	require.Error(t, err)
	var structured *apperrors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, apperrors.TypeNotFound, structured.Type)
}
