package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Seed      string `long:"seed" description:"Path to a seed YAML file (default: embedded seed)" env:"SEED_FILE"`
	Timezone  string `long:"timezone" description:"IANA zone that defines the local calendar day" default:"America/Los_Angeles" env:"TIMEZONE"`
	WeekStart string `long:"week-start" description:"First day of the week" choice:"sunday" choice:"monday" default:"sunday" env:"WEEK_START"`
	Now       string `long:"now" description:"Evaluate time windows at this RFC 3339 instant instead of the current time"`
	JSON      bool   `long:"json" description:"Output in JSON format"`
	Version   bool   `long:"version" description:"Show version and exit"`

	out io.Writer
}

// ListCommand prints published seed events matching the filter.
type ListCommand struct {
	Query string   `long:"query" short:"q" description:"Case-insensitive text to find in title, description, or location"`
	When  string   `long:"when" description:"Time window" choice:"all" choice:"today" choice:"this-week" choice:"this-weekend" default:"all"`
	Tags  []string `long:"tag" short:"t" description:"Category tag (repeatable; any match)"`

	globals *GlobalFlags
}

// ICSCommand writes the filtered published events as iCalendar.
type ICSCommand struct {
	Query   string   `long:"query" short:"q" description:"Case-insensitive text to find in title, description, or location"`
	When    string   `long:"when" description:"Time window" choice:"all" choice:"today" choice:"this-week" choice:"this-weekend" default:"all"`
	Tags    []string `long:"tag" short:"t" description:"Category tag (repeatable; any match)"`
	BaseURL string   `long:"base-url" description:"Public URL used for event links" default:"http://localhost:8080" env:"BASE_URL"`

	globals *GlobalFlags
}

// SeedCommand summarizes the seed data.
type SeedCommand struct {
	globals *GlobalFlags
}
