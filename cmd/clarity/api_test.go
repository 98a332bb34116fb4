package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/oliverisaac/clarity/lib/stores"
	"github.com/oliverisaac/clarity/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestJournal_CreateListDelete(t *testing.T) {
	a, _ := newTestApp(t)

	rec := serve(t, createJournalEntry(a), formRequest(http.MethodPost, "/api/journal", url.Values{"content": {"first"}}))
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[types.JournalEntry](t, rec)

	rec = serve(t, createJournalEntry(a), formRequest(http.MethodPost, "/api/journal", url.Values{"content": {"second"}, "mood": {"hopeful"}}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(t, listJournal(a), httptest.NewRequest(http.MethodGet, "/api/journal", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]types.JournalEntry](t, rec)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Content, "newest first")
	assert.Equal(t, types.MoodHopeful, entries[0].Mood)

	rec = serve(t, deleteJournalEntry(a), httptest.NewRequest(http.MethodDelete, "/", nil), "id", first.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, deleteJournalEntry(a), httptest.NewRequest(http.MethodDelete, "/", nil), "id", first.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJournal_RejectsBlankAndUnknownMood(t *testing.T) {
	a, _ := newTestApp(t)

	rec := serve(t, createJournalEntry(a), formRequest(http.MethodPost, "/", url.Values{"content": {"   "}}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(t, createJournalEntry(a), formRequest(http.MethodPost, "/", url.Values{"content": {"ok"}, "mood": {"furious"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(t, listJournal(a), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGoals_DueDateForms(t *testing.T) {
	a, _ := newTestApp(t)

	rec := serve(t, createGoal(a), formRequest(http.MethodPost, "/", url.Values{"text": {"Dated"}, "dueDate": {"2025-04-01"}}))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"dueDate":"2025-04-01"`)

	rec = serve(t, createGoal(a), formRequest(http.MethodPost, "/", url.Values{"text": {"Whenever"}, "dueDate": {"2025-04-01"}, "noTimeline": {"true"}}))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"dueDate":null`)

	rec = serve(t, createGoal(a), formRequest(http.MethodPost, "/", url.Values{"text": {"Undecided"}}))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "dueDate")

	rec = serve(t, createGoal(a), formRequest(http.MethodPost, "/", url.Values{"text": {"Bad"}, "dueDate": {"April 1st"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(t, createGoal(a), formRequest(http.MethodPost, "/", url.Values{"text": {" "}}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(t, listGoals(a), httptest.NewRequest(http.MethodGet, "/", nil))
	goals := decode[[]types.Goal](t, rec)
	require.Len(t, goals, 3)
	assert.Equal(t, "Dated", goals[0].Text, "goals keep insertion order")
	assert.Equal(t, types.TimelineNone, goals[1].DueDate.Timeline)
}

func TestGoals_ToggleTwiceIsIdentity(t *testing.T) {
	a, _ := newTestApp(t)

	rec := serve(t, createGoal(a), formRequest(http.MethodPost, "/", url.Values{"text": {"Stretch"}}))
	goal := decode[types.Goal](t, rec)

	rec = serve(t, toggleGoal(a), httptest.NewRequest(http.MethodPost, "/", nil), "id", goal.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[types.Goal](t, rec).Completed)

	rec = serve(t, toggleGoal(a), httptest.NewRequest(http.MethodPost, "/", nil), "id", goal.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, goal, decode[types.Goal](t, rec))

	rec = serve(t, toggleGoal(a), httptest.NewRequest(http.MethodPost, "/", nil), "id", "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVision_PinCaptionUnpin(t *testing.T) {
	a, _ := newTestApp(t)

	rec := serve(t, pinVisionItem(a), multipartRequest(t, "/api/vision", nil, pngBytes(t, 1200, 800)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[types.VisionItem](t, rec)
	assert.True(t, strings.HasPrefix(item.ImageURL, "data:image/jpeg;base64,"))
	assert.GreaterOrEqual(t, item.Rotation, -types.MaxRotation)
	assert.LessOrEqual(t, item.Rotation, types.MaxRotation)

	rec = serve(t, captionVisionItem(a), formRequest(http.MethodPut, "/", url.Values{"caption": {"Lake house"}}), "id", item.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, listVision(a), httptest.NewRequest(http.MethodGet, "/", nil))
	board := decode[visionBoardResponse](t, rec)
	require.Len(t, board.Items, 1)
	assert.Equal(t, "Lake house", board.Items[0].Caption)
	assert.Equal(t, item.Rotation, board.Items[0].Rotation)
	assert.Equal(t, stores.BoardIdle, board.State)

	rec = serve(t, unpinVisionItem(a), httptest.NewRequest(http.MethodDelete, "/", nil), "id", item.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestVision_RejectsWhenFullAndNonImages(t *testing.T) {
	a, _ := newTestApp(t)
	board := stores.NewVisionBoard(a.storage.Scope(testUser.Namespace()))

	rec := serve(t, pinVisionItem(a), multipartRequest(t, "/", nil, []byte("just some text")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	for range types.VisionBoardCapacity {
		require.NoError(t, board.Append(context.Background(), types.NewVisionItem("data:image/jpeg;base64,AA==", testNow)))
	}

	rec = serve(t, pinVisionItem(a), multipartRequest(t, "/", nil, pngBytes(t, 10, 10)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(t, listVision(a), httptest.NewRequest(http.MethodGet, "/", nil))
	full := decode[visionBoardResponse](t, rec)
	assert.Len(t, full.Items, types.VisionBoardCapacity)
	assert.Equal(t, stores.BoardFull, full.State)
}

func TestAffirmation_CachedForTheDay(t *testing.T) {
	a, gw := newTestApp(t)

	rec := serve(t, getAffirmation(a), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"affirmation 1"}`, rec.Body.String())

	rec = serve(t, getAffirmation(a), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"text":"affirmation 1"}`, rec.Body.String())
	assert.Equal(t, 1, gw.Calls("affirmation"))

	rec = serve(t, refreshAffirmation(a), httptest.NewRequest(http.MethodPost, "/", nil))
	assert.JSONEq(t, `{"text":"affirmation 2"}`, rec.Body.String())

	rec = serve(t, speakAffirmation(a), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Equal(t, "RIFF", rec.Body.String()[:4])
}

func TestCompanion_SendAndSpeak(t *testing.T) {
	a, gw := newTestApp(t)

	rec := serve(t, sendMessage(a), formRequest(http.MethodPost, "/", url.Values{"text": {"Is it going to rain?"}}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reply := decode[types.ChatMessage](t, rec)
	assert.Equal(t, "heard: Is it going to rain?", reply.Text)
	assert.Len(t, reply.Sources, 1)

	rec = serve(t, sendMessage(a), multipartRequest(t, "/", map[string]string{"text": "What is this?"}, pngBytes(t, 8, 8)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "a calm lake", decode[types.ChatMessage](t, rec).Text)
	assert.Equal(t, 1, gw.Calls("image"))

	rec = serve(t, sendMessage(a), formRequest(http.MethodPost, "/", url.Values{"text": {""}}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(t, listMessages(a), httptest.NewRequest(http.MethodGet, "/", nil))
	msgs := decode[[]types.ChatMessage](t, rec)
	require.Len(t, msgs, 5, "greeting plus two exchanges")

	rec = serve(t, speakMessage(a), httptest.NewRequest(http.MethodGet, "/", nil), "id", msgs[0].ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RIFF", rec.Body.String()[:4])
	assert.False(t, a.chat.Messages(testUser.Namespace())[0].Speaking)

	rec = serve(t, speakMessage(a), httptest.NewRequest(http.MethodGet, "/", nil), "id", "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVision_ReportsUploadingWhileScaling(t *testing.T) {
	a, _ := newTestApp(t)

	done := a.uploads.begin(testUser.Namespace())
	rec := serve(t, listVision(a), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, stores.BoardUploading, decode[visionBoardResponse](t, rec).State)
	assert.False(t, a.uploads.active("user:2"), "other owners are unaffected")

	done()
	rec = serve(t, listVision(a), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, stores.BoardIdle, decode[visionBoardResponse](t, rec).State)
}

func TestVision_PinLeavesNoUploadInFlight(t *testing.T) {
	a, _ := newTestApp(t)

	rec := serve(t, pinVisionItem(a), multipartRequest(t, "/", nil, pngBytes(t, 64, 48)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.False(t, a.uploads.active(testUser.Namespace()))

	rec = serve(t, pinVisionItem(a), multipartRequest(t, "/", nil, []byte("not a photo")))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, a.uploads.active(testUser.Namespace()))
}

func TestReadUpload_CopiesTheFile(t *testing.T) {
	req := multipartRequest(t, "/", nil, []byte("photo bytes"))
	require.NoError(t, req.ParseMultipartForm(1<<20))
	header := req.MultipartForm.File["image"][0]

	data, err := readUpload(header)
	require.NoError(t, err)
	assert.Equal(t, []byte("photo bytes"), data)
}
