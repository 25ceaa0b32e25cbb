// Package pages holds the server-rendered page components. Components are
// plain templ.Component values written against the templ runtime.
package pages

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/a-h/templ"

	"github.com/pugetsound/eventscope/internal/plugins/events"
	"github.com/pugetsound/eventscope/internal/templates/layouts"
	"github.com/pugetsound/eventscope/internal/widgets/filter"
)

// FeedData is everything the feed page renders.
type FeedData struct {
	Criteria  filter.Criteria
	Events    []events.Event
	Total     int
	Favorites []string
}

// timeOptions are the sidebar time-window links in display order.
var timeOptions = []struct {
	When  filter.TimeFilter
	Label string
}{
	{filter.TimeAll, "Any time"},
	{filter.TimeToday, "Today"},
	{filter.TimeThisWeek, "This week"},
	{filter.TimeThisWeekend, "This weekend"},
}

// Feed renders the event feed with the filter sidebar.
func Feed(data FeedData) templ.Component {
	return layouts.Base("Events", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := sidebar(w, data.Criteria); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, `<section class="feed"><p class="count">%d of %d events</p>`,
			len(data.Events), data.Total); err != nil {
			return err
		}

		if len(data.Events) == 0 {
			if _, err := io.WriteString(w, `<p class="empty">No events match these filters.</p>`); err != nil {
				return err
			}
		}
		for _, ev := range data.Events {
			if err := eventCard(w, ev, slices.Contains(data.Favorites, ev.ID)); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</section>`)
		return err
	}))
}

func sidebar(w io.Writer, c filter.Criteria) error {
	var b strings.Builder

	b.WriteString(`<aside class="filters"><form method="get" action="/">`)
	fmt.Fprintf(&b, `<input type="search" name="q" value="%s" placeholder="Search events">`,
		templ.EscapeString(c.Query))
	if c.When != "" && c.When != filter.TimeAll {
		fmt.Fprintf(&b, `<input type="hidden" name="when" value="%s">`, templ.EscapeString(string(c.When)))
	}
	if len(c.Tags) > 0 {
		fmt.Fprintf(&b, `<input type="hidden" name="tags" value="%s">`, templ.EscapeString(joinTags(c.Tags)))
	}
	b.WriteString(`<button type="submit">Search</button></form>`)

	b.WriteString(`<h3>When</h3><ul class="when">`)
	for _, opt := range timeOptions {
		next := c
		next.When = opt.When
		active := c.When == opt.When || (c.When == "" && opt.When == filter.TimeAll)
		b.WriteString(link(next, opt.Label, active))
	}
	b.WriteString(`</ul>`)

	b.WriteString(`<h3>Categories</h3><ul class="tags">`)
	for _, t := range events.AllTags() {
		b.WriteString(link(c.ToggleTag(t), tagLabel(t), slices.Contains(c.Tags, t)))
	}
	b.WriteString(`</ul>`)

	if !c.IsZero() {
		b.WriteString(`<a class="clear" href="/">Clear all filters</a>`)
	}
	b.WriteString(`</aside>`)

	_, err := io.WriteString(w, b.String())
	return err
}

func eventCard(w io.Writer, ev events.Event, favorite bool) error {
	var b strings.Builder

	b.WriteString(`<article class="event">`)
	if ev.ImageURL != "" {
		fmt.Fprintf(&b, `<img src="%s" alt="">`, templ.EscapeString(ev.ImageURL))
	}
	star := ""
	if favorite {
		star = ` <span class="favorite" title="Favorite">★</span>`
	}
	fmt.Fprintf(&b, `<h2><a href="/api/v1/events/%s">%s</a>%s</h2>`,
		templ.EscapeString(ev.ID), templ.EscapeString(ev.Title), star)
	fmt.Fprintf(&b, `<p class="when">%s`, templ.EscapeString(ev.Date))
	if ev.Time != "" {
		fmt.Fprintf(&b, ` · %s`, templ.EscapeString(ev.Time))
	}
	fmt.Fprintf(&b, `</p><p class="where">%s</p>`, templ.EscapeString(ev.Location))
	fmt.Fprintf(&b, `<p>%s</p>`, templ.EscapeString(ev.ShortDescription))
	if len(ev.Tags) > 0 {
		b.WriteString(`<ul class="event-tags">`)
		for _, t := range ev.Tags {
			fmt.Fprintf(&b, `<li>%s</li>`, templ.EscapeString(tagLabel(t)))
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString(`</article>`)

	_, err := io.WriteString(w, b.String())
	return err
}

// link renders a sidebar entry pointing at the feed with criteria c.
func link(c filter.Criteria, label string, active bool) string {
	href := "/"
	if q := c.Encode(); q != "" {
		href += "?" + q
	}
	class := ""
	if active {
		class = ` class="active"`
	}
	return fmt.Sprintf(`<li><a%s href="%s">%s</a></li>`,
		class, templ.EscapeString(href), templ.EscapeString(label))
}

func tagLabel(t events.Tag) string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joinTags(tags []events.Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}
