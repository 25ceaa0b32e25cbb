package layouts

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Base wraps body in the page shell: document head, site header with the
// signed-in user, and the main column. Header data is read from ctx.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
				`<meta name="viewport" content="width=device-width, initial-scale=1">`+
				`<title>%s · Eventscope</title></head><body>`,
			templ.EscapeString(title),
		); err != nil {
			return err
		}

		if err := header(ctx, w); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func header(ctx context.Context, w io.Writer) error {
	current := ""
	if GetActivePath(ctx) == "/" {
		current = ` aria-current="page"`
	}
	if _, err := fmt.Fprintf(w, `<header><a href="/" class="brand"%s>Eventscope</a><nav>`, current); err != nil {
		return err
	}

	if IsAuthenticated(ctx) {
		badge := ""
		if n := GetFavoriteCount(ctx); n > 0 {
			badge = fmt.Sprintf(` <span class="badge">%d</span>`, n)
		}
		if _, err := fmt.Fprintf(w, `<span class="user">%s</span><a href="/api/v1/dashboard">Favorites%s</a>`,
			templ.EscapeString(GetUserName(ctx)), badge); err != nil {
			return err
		}
		if GetIsAdmin(ctx) {
			if _, err := io.WriteString(w, `<a href="/api/v1/admin/pending">Moderation</a>`); err != nil {
				return err
			}
		}
	} else {
		if _, err := io.WriteString(w, `<span class="user">Guest</span>`); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, `</nav></header>`)
	return err
}
