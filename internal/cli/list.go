package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pugetsound/eventscope/internal/plugins/events"
	"github.com/pugetsound/eventscope/internal/widgets/filter"
)

// listJSON is the JSON output structure for the list command. It matches
// the server's GET /api/v1/events body.
type listJSON = filter.ListResponse

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	criteria, err := filter.Parse(c.Query, c.When, c.Tags)
	if err != nil {
		return err
	}
	clk, err := c.globals.calendar()
	if err != nil {
		return err
	}
	data, err := c.globals.seedData()
	if err != nil {
		return err
	}

	matched := filter.Apply(data.Published, criteria, clk)

	if c.globals.JSON {
		enc := json.NewEncoder(c.globals.writer())
		enc.SetIndent("", "  ")
		return enc.Encode(listJSON{
			Events:   matched,
			Total:    len(data.Published),
			Filtered: !criteria.IsZero(),
		})
	}
	return c.printHuman(matched, len(data.Published))
}

func (c *ListCommand) printHuman(list []events.Event, total int) error {
	w := tabwriter.NewWriter(c.globals.writer(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTIME\tTITLE\tTAGS")
	for _, ev := range list {
		tags := make([]string, len(ev.Tags))
		for i, t := range ev.Tags {
			tags[i] = string(t)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", ev.ID, ev.Date, ev.Time, ev.Title, strings.Join(tags, ","))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.globals.writer(), "\n%d of %d events\n", len(list), total)
	return err
}
