package views

import (
	"context"
	"time"

	"github.com/a-h/templ"
	"github.com/oliverisaac/clarity/types"
)

func Index(data types.HomePageData) templ.Component {
	body := component(func(ctx context.Context, h *html) {
		if data.User == nil {
			h.raw(`<section class="card welcome"><h2>A quiet place for hard days</h2>`)
			h.raw(`<p>Daily whispers, a private journal, small wins and a companion who listens.</p>`)
			h.raw(`<p><a class="button" href="/auth/sign-in">Sign in</a></p></section>`)
			return
		}

		h.raw(`<nav><span>Hello, `)
		h.text(data.User.Name)
		h.raw(`</span><form method="post" action="/auth/sign-out"><button type="submit">Sign out</button></form>`)
		if data.Config.RemindersEnabled() {
			h.rawf(`<button id="subscribe" data-vapid="%s">Daily reminder</button>`, esc(data.Config.VapidPublicKey))
		}
		h.raw(`</nav>`)
		if data.Err != nil {
			h.rawf(`<p class="error">%s</p>`, esc(data.Err.Error()))
		}

		affirmationCard(h, data.Affirmation)
		h.raw(`<div class="columns">`)
		journal(h, data.Journal)
		goals(h, data.Goals)
		h.raw(`</div>`)
		visionBoard(h, data.Vision)
		companion(h, data.Messages)
	})
	return Layout("Clarity & Comfort", body)
}

func affirmationCard(h *html, text string) {
	h.raw(`<section class="card affirmation"><h2>Daily Whisper</h2><blockquote>&ldquo;`)
	h.text(text)
	h.raw(`&rdquo;</blockquote>`)
	h.raw(`<audio controls preload="none" src="/api/affirmation/speech"></audio>`)
	h.raw(`<form method="post" action="/api/affirmation/refresh"><button type="submit">New Card</button></form>`)
	h.raw(`</section>`)
}

func journal(h *html, entries []types.JournalEntry) {
	h.raw(`<section class="card journal"><h3>My Clarity Journal</h3>`)
	h.raw(`<form method="post" action="/api/journal">`)
	h.raw(`<textarea name="content" rows="3" required placeholder="How are you feeling right now? Write it down to clear your mind..."></textarea>`)
	h.raw(`<select name="mood"><option value="">Mood</option>`)
	for _, m := range []types.Mood{types.MoodHappy, types.MoodNeutral, types.MoodSad, types.MoodAnxious, types.MoodHopeful} {
		h.rawf(`<option value="%s">%s</option>`, m, m)
	}
	h.raw(`</select><button type="submit">Save Note</button></form>`)

	if len(entries) == 0 {
		h.raw(`<p class="empty">No entries yet. Start writing whenever you're ready.</p>`)
	}
	h.raw(`<ul class="entries">`)
	for _, e := range entries {
		h.raw(`<li><p class="when">`)
		h.text(formatEntryDate(e.Date))
		if e.Mood != "" {
			h.rawf(` &middot; %s`, esc(string(e.Mood)))
		}
		h.raw(`</p><p class="content">`)
		h.text(e.Content)
		h.raw(`</p></li>`)
	}
	h.raw(`</ul></section>`)
}

func goals(h *html, goals []types.Goal) {
	h.raw(`<section class="card goals"><h3>Small Wins &amp; Goals</h3>`)
	h.raw(`<form method="post" action="/api/goals">`)
	h.raw(`<input type="text" name="text" required placeholder="e.g., Call lawyer, 10 min meditation...">`)
	h.raw(`<input type="date" name="dueDate">`)
	h.raw(`<label><input type="checkbox" name="noTimeline" value="true"> No timeline</label>`)
	h.raw(`<button type="submit">Save Goal</button></form>`)

	if len(goals) == 0 {
		h.raw(`<p class="empty">One step at a time. Add a goal above.</p>`)
	}
	h.raw(`<ul class="goals">`)
	for _, g := range goals {
		class := ""
		if g.Completed {
			class = "done"
		}
		h.rawf(`<li class="%s">`, class)
		h.rawf(`<form method="post" action="/api/goals/%s/toggle"><button type="submit" class="check">&#10003;</button></form>`, esc(g.ID))
		h.raw(`<span>`)
		h.text(g.Text)
		h.raw(`</span>`)
		if g.DueDate.Timeline == types.TimelineDated && !g.Completed {
			h.rawf(`<span class="due">Due %s</span>`, esc(formatDueDate(g.DueDate.Date)))
		}
		h.rawf(`<form method="post" action="/api/goals/%s"><input type="hidden" name="_method" value="DELETE"><button type="submit" class="remove">&times;</button></form>`, esc(g.ID))
		h.raw(`</li>`)
	}
	h.raw(`</ul></section>`)
}

func visionBoard(h *html, items []types.VisionItem) {
	h.raw(`<section class="card vision"><h3>My Vision</h3>`)
	h.rawf(`<p>%d / %d visions pinned</p>`, len(items), types.VisionBoardCapacity)
	if len(items) < types.VisionBoardCapacity {
		h.raw(`<form method="post" action="/api/vision" enctype="multipart/form-data">`)
		h.raw(`<input type="file" name="image" accept="image/*" required><button type="submit">Pin Photo</button></form>`)
	}

	h.raw(`<div class="board">`)
	for i := range types.VisionBoardCapacity {
		if i >= len(items) {
			h.raw(`<div class="slot empty">Add</div>`)
			continue
		}
		item := items[i]
		h.rawf(`<figure class="slot" style="transform: rotate(%ddeg)">`, item.Rotation)
		h.rawf(`<img src="%s" alt="Vision">`, esc(item.ImageURL))
		h.rawf(`<form method="post" action="/api/vision/%s/caption"><input type="hidden" name="_method" value="PUT">`, esc(item.ID))
		h.rawf(`<input type="text" name="caption" placeholder="..." value="%s"></form>`, esc(item.Caption))
		h.rawf(`<form method="post" action="/api/vision/%s"><input type="hidden" name="_method" value="DELETE"><button type="submit" title="Unpin">&times;</button></form>`, esc(item.ID))
		h.raw(`</figure>`)
	}
	h.raw(`</div></section>`)
}

func companion(h *html, msgs []types.ChatMessage) {
	h.raw(`<section class="card companion"><h3>Compassionate Companion</h3><ol class="chat">`)
	for _, m := range msgs {
		h.rawf(`<li class="%s">`, esc(string(m.Role)))
		if m.ImageURL != "" {
			h.rawf(`<img src="%s" alt="User upload">`, esc(m.ImageURL))
		}
		h.raw(`<p>`)
		h.text(m.Text)
		h.raw(`</p>`)
		if len(m.Sources) > 0 {
			h.raw(`<p class="sources">Sources:</p><ul>`)
			for _, s := range m.Sources {
				h.rawf(`<li><a href="%s" target="_blank" rel="noopener noreferrer">%s</a></li>`, esc(string(templ.URL(s.URI))), esc(s.Title))
			}
			h.raw(`</ul>`)
		}
		if m.Role == types.RoleModel {
			h.rawf(`<audio controls preload="none" src="/api/companion/%s/speech"></audio>`, esc(m.ID))
		}
		h.raw(`</li>`)
	}
	h.raw(`</ol><form method="post" action="/api/companion" enctype="multipart/form-data">`)
	h.raw(`<input type="file" name="image" accept="image/*">`)
	h.raw(`<input type="text" name="text" placeholder="Type your question or message here...">`)
	h.raw(`<button type="submit">Send</button></form></section>`)
}

func formatEntryDate(iso string) string {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return iso
	}
	return t.Local().Format("Monday, Jan 2, 15:04")
}

func formatDueDate(date string) string {
	t, err := time.Parse(types.DueDateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}
