package views

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/oliverisaac/clarity/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, data types.HomePageData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Index(data).Render(context.Background(), &buf))
	return buf.String()
}

func TestIndex_Anonymous(t *testing.T) {
	out := renderString(t, types.HomePageData{})
	assert.Contains(t, out, `href="/auth/sign-in"`)
	assert.NotContains(t, out, "Daily Whisper")
}

func TestIndex_EscapesUserContent(t *testing.T) {
	data := types.HomePageData{}.
		WithUser(types.User{Name: "Sam", Email: "sam@example.org"}).
		WithAffirmation("You are <b>enough</b>").
		WithJournal([]types.JournalEntry{{ID: "1", Content: `<script>alert("x")</script>`, Date: "2026-10-18T09:00:00Z"}})

	out := renderString(t, data)
	assert.Contains(t, out, "You are &lt;b&gt;enough&lt;/b&gt;")
	assert.NotContains(t, out, `<script>alert`)
}

func TestIndex_VisionBoardSlots(t *testing.T) {
	items := make([]types.VisionItem, 0, types.VisionBoardCapacity)
	for range types.VisionBoardCapacity {
		items = append(items, types.VisionItem{ID: "v", ImageURL: "data:image/jpeg;base64,AA", Rotation: -2})
	}

	data := types.HomePageData{}.WithUser(types.User{Name: "Sam"}).WithVision(items[:3])
	out := renderString(t, data)
	assert.Equal(t, 6, strings.Count(out, `class="slot empty"`))
	assert.Contains(t, out, "Pin Photo")
	assert.Contains(t, out, "rotate(-2deg)")

	out = renderString(t, types.HomePageData{}.WithUser(types.User{Name: "Sam"}).WithVision(items))
	assert.NotContains(t, out, "Pin Photo")
	assert.Contains(t, out, "9 / 9 visions pinned")
}

func TestIndex_GoalDueDates(t *testing.T) {
	due, err := types.DueOn("2026-11-03")
	require.NoError(t, err)
	data := types.HomePageData{}.WithUser(types.User{Name: "Sam"}).WithGoals([]types.Goal{
		{ID: "a", Text: "Dated", DueDate: due},
		{ID: "b", Text: "Open ended", DueDate: types.NoTimeline()},
		{ID: "c", Text: "Finished", DueDate: due, Completed: true},
	})

	out := renderString(t, data)
	assert.Equal(t, 1, strings.Count(out, "Due Nov 3"))
	assert.Contains(t, out, `class="done"`)
}

func TestIndex_ChatSources(t *testing.T) {
	data := types.HomePageData{}.WithUser(types.User{Name: "Sam"}).WithMessages([]types.ChatMessage{
		{ID: "m1", Role: types.RoleModel, Text: "Here you go", Sources: []types.Source{{Title: "Guide", URI: "https://example.org/guide"}}},
	})
	out := renderString(t, data)
	assert.Contains(t, out, `href="https://example.org/guide"`)
	assert.Contains(t, out, `/api/companion/m1/speech`)
}

func TestIndex_ChatSourcesRejectUnsafeSchemes(t *testing.T) {
	data := types.HomePageData{}.WithUser(types.User{Name: "Sam"}).WithMessages([]types.ChatMessage{
		{ID: "m1", Role: types.RoleModel, Text: "Look", Sources: []types.Source{{Title: "Trap", URI: "javascript:alert(1)"}}},
	})
	out := renderString(t, data)
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, string(templ.FailedSanitizationURL))
	assert.Contains(t, out, ">Trap</a>")
}

func TestSignInForm(t *testing.T) {
	var buf bytes.Buffer
	fd := types.NewFormData(types.Config{AllowSignup: true}).WithError(errors.New("Invalid email or password"))
	require.NoError(t, SignInForm(fd).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "Invalid email or password")
	assert.Contains(t, buf.String(), "/auth/sign-up")

	buf.Reset()
	require.NoError(t, SignInForm(types.NewFormData(types.Config{})).Render(context.Background(), &buf))
	assert.NotContains(t, buf.String(), "/auth/sign-up")
}
