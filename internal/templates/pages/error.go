package pages

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/pugetsound/eventscope/internal/templates/layouts"
)

// ErrorPage renders a browser-facing error with its status code.
func ErrorPage(code int, message string) templ.Component {
	title := http.StatusText(code)
	if title == "" {
		title = "Error"
	}
	return layouts.Base(title, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<section class="error"><h1>%d</h1><h2>%s</h2><p>%s</p><a href="/">Back to events</a></section>`,
			code, templ.EscapeString(title), templ.EscapeString(message),
		)
		return err
	}))
}
