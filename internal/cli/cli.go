// Package cli implements eventctl, the offline companion to the server. It
// runs the filter engine and iCalendar export directly against seed data.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	goflags "github.com/jessevdk/go-flags"

	"github.com/pugetsound/eventscope/internal/clock"
	"github.com/pugetsound/eventscope/internal/config"
	"github.com/pugetsound/eventscope/internal/seed"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	List *ListCommand
	ICS  *ICSCommand
	Seed *SeedCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(out io.Writer) (*goflags.Parser, *GlobalFlags, *commands) {
	globals := GlobalFlags{out: out}

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "eventctl"
	parser.LongDescription = "Browse, filter, and export the eventscope seed catalog."

	cmds := &commands{
		List: &ListCommand{globals: &globals},
		ICS:  &ICSCommand{globals: &globals},
		Seed: &SeedCommand{globals: &globals},
	}

	parser.AddCommand("list", "List published events", "List published events matching a text query, time window, and tags.", cmds.List)
	parser.AddCommand("ics", "Export events as iCalendar", "Write the filtered published events to stdout as an iCalendar feed.", cmds.ICS)
	parser.AddCommand("seed", "Summarize seed data", "Print the users and event counts in the seed data.", cmds.Seed)

	return parser, &globals, cmds
}

// Run is the main entry point for eventctl using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil, os.Stdout)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the
// matched subcommand, writing its output to out.
func RunWithArgs(version string, args []string, out io.Writer) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Fprintf(out, "eventctl %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(out)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}

// calendar builds the clock the filters evaluate against.
func (g *GlobalFlags) calendar() (clock.Clock, error) {
	loc, err := config.CalendarConfig{Timezone: g.Timezone}.Location()
	if err != nil {
		return nil, err
	}
	weekStart := config.CalendarConfig{WeekStart: g.WeekStart}.WeekStartDay()

	if g.Now == "" {
		return clock.New(loc, weekStart), nil
	}
	at, err := time.Parse(time.RFC3339, g.Now)
	if err != nil {
		return nil, fmt.Errorf("invalid --now %q: %w", g.Now, err)
	}
	return clock.Fixed{At: at.In(loc), Start: weekStart}, nil
}

// seedData loads the configured seed file or the embedded default.
func (g *GlobalFlags) seedData() (*seed.Data, error) {
	return seed.Load(g.Seed)
}

func (g *GlobalFlags) writer() io.Writer {
	if g.out == nil {
		return os.Stdout
	}
	return g.out
}
