// Package seed provides the fixed user directory and the starting event
// catalog. The defaults are embedded YAML; a file path can replace them
// wholesale (SEED_FILE).
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pugetsound/eventscope/internal/plugins/auth"
	"github.com/pugetsound/eventscope/internal/plugins/events"
)

//go:embed seed.yaml
var embedded []byte

// Data is the decoded seed: directory users plus the two event collections.
type Data struct {
	Users     []auth.User
	Published []events.Event
	Pending   []events.Event
}

// file is the on-disk YAML layout.
type file struct {
	Users     []userRecord  `yaml:"users"`
	Published []eventRecord `yaml:"published"`
	Pending   []eventRecord `yaml:"pending"`
}

type userRecord struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	IsAdmin bool   `yaml:"is_admin"`
}

type eventRecord struct {
	ID               string   `yaml:"id"`
	Title            string   `yaml:"title"`
	Description      string   `yaml:"description"`
	ShortDescription string   `yaml:"short_description"`
	Date             string   `yaml:"date"`
	Time             string   `yaml:"time"`
	Location         string   `yaml:"location"`
	Tags             []string `yaml:"tags"`
	CreatedBy        string   `yaml:"created_by"`
	CreatedAt        string   `yaml:"created_at"`
	ImageURL         string   `yaml:"image_url"`
}

// Load returns the seed at path, or the embedded default when path is empty.
func Load(path string) (*Data, error) {
	if path == "" {
		return Parse(embedded)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded seed.
func Default() *Data {
	d, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("embedded seed is invalid: %v", err))
	}
	return d
}

// Parse decodes and validates seed YAML. Tags must come from the
// vocabulary and event ids must be unique across both collections.
func Parse(data []byte) (*Data, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	if len(f.Users) == 0 {
		return nil, errors.New("seed has no users")
	}

	out := &Data{
		Users:     make([]auth.User, 0, len(f.Users)),
		Published: make([]events.Event, 0, len(f.Published)),
		Pending:   make([]events.Event, 0, len(f.Pending)),
	}

	for _, u := range f.Users {
		out.Users = append(out.Users, auth.User{
			ID:             u.ID,
			Name:           u.Name,
			Email:          u.Email,
			IsAdmin:        u.IsAdmin,
			FavoriteEvents: []string{},
			CreatedEvents:  []string{},
		})
	}

	seen := make(map[string]bool)
	convert := func(recs []eventRecord, approved bool) ([]events.Event, error) {
		list := make([]events.Event, 0, len(recs))
		for _, r := range recs {
			if r.ID == "" {
				return nil, fmt.Errorf("seed event %q has no id", r.Title)
			}
			if seen[r.ID] {
				return nil, fmt.Errorf("duplicate seed event id %q", r.ID)
			}
			seen[r.ID] = true

			ev, err := r.toEvent(approved)
			if err != nil {
				return nil, err
			}
			list = append(list, ev)
		}
		return list, nil
	}

	var err error
	if out.Published, err = convert(f.Published, true); err != nil {
		return nil, err
	}
	if out.Pending, err = convert(f.Pending, false); err != nil {
		return nil, err
	}

	return out, nil
}

func (r eventRecord) toEvent(approved bool) (events.Event, error) {
	tags := make([]events.Tag, 0, len(r.Tags))
	for _, raw := range r.Tags {
		t, err := events.ParseTag(raw)
		if err != nil {
			return events.Event{}, fmt.Errorf("seed event %q: %w", r.ID, err)
		}
		tags = append(tags, t)
	}

	return events.Event{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		Date:             r.Date,
		Time:             r.Time,
		Location:         r.Location,
		Tags:             tags,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
		Approved:         approved,
		ImageURL:         r.ImageURL,
	}, nil
}
