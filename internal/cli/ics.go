package cli

import (
	"github.com/pugetsound/eventscope/internal/plugins/events"
	"github.com/pugetsound/eventscope/internal/widgets/filter"
)

// Execute implements the go-flags Commander interface for ICSCommand.
func (c *ICSCommand) Execute(args []string) error {
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
	return events.WriteICS(c.globals.writer(), matched, clk.Location(), c.BaseURL)
}
