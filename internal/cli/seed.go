package cli

import (
	"encoding/json"
	"fmt"
)

// seedJSON is the JSON output structure for the seed command.
type seedJSON struct {
	Users     []seedUserJSON `json:"users"`
	Published int            `json:"published"`
	Pending   int            `json:"pending"`
}

type seedUserJSON struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Execute implements the go-flags Commander interface for SeedCommand.
func (c *SeedCommand) Execute(args []string) error {
	data, err := c.globals.seedData()
	if err != nil {
		return err
	}

	out := seedJSON{
		Users:     make([]seedUserJSON, len(data.Users)),
		Published: len(data.Published),
		Pending:   len(data.Pending),
	}
	for i, u := range data.Users {
		out.Users[i] = seedUserJSON{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
	}

	w := c.globals.writer()
	if c.globals.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintln(w, "Seed Data")
	fmt.Fprintln(w, "=========")
	fmt.Fprintf(w, "Users:     %d\n", len(out.Users))
	for _, u := range out.Users {
		role := "member"
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(w, "  %-4s %-24s %s\n", u.ID, u.Email, role)
	}
	fmt.Fprintf(w, "Published: %d\n", out.Published)
	_, err = fmt.Fprintf(w, "Pending:   %d\n", out.Pending)
	return err
}
