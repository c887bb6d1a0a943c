package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/abelbrown/spotlight/internal/signal"
)

//go:embed seed.toml
var seedTOML []byte

type seedFile struct {
	Signals []seedSignal `toml:"signal"`
}

type seedSignal struct {
	ID          string          `toml:"id"`
	Type        string          `toml:"type"`
	Status      string          `toml:"status"`
	Title       string          `toml:"title"`
	Category    signal.Category `toml:"category"`
	Age         string          `toml:"age"`
	Users       []string        `toml:"users"`
	Height      int             `toml:"height"`
	StatusColor string          `toml:"status_color"`
	Background  string          `toml:"background"`
	Initiator   string          `toml:"initiator"`
	Receiver    string          `toml:"receiver"`
	Description string          `toml:"description"`
	Location    string          `toml:"location"`
	Date        string          `toml:"date"`
	Time        string          `toml:"time"`
	Options     []string        `toml:"options"`
}

// SeedSignals decodes the embedded demo data. Creation times are relative
// to now.
func SeedSignals(now time.Time) ([]signal.Signal, error) {
	return parseSeed(seedTOML, now)
}

func parseSeed(data []byte, now time.Time) ([]signal.Signal, error) {
	var f seedFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	sigs := make([]signal.Signal, 0, len(f.Signals))
	for _, s := range f.Signals {
		if s.ID == "" || s.Title == "" {
			return nil, fmt.Errorf("seed signal %q: id and title are required", s.ID)
		}
		age, err := time.ParseDuration(s.Age)
		if err != nil {
			return nil, fmt.Errorf("seed signal %s: age: %w", s.ID, err)
		}
		sigs = append(sigs, signal.Signal{
			ID:          s.ID,
			Type:        signal.Type(s.Type),
			Status:      signal.Status(s.Status),
			Title:       s.Title,
			Category:    s.Category,
			Created:     now.Add(-age),
			Users:       s.Users,
			Height:      s.Height,
			StatusColor: s.StatusColor,
			Background:  s.Background,
			Description: s.Description,
			Options:     s.Options,
			Location:    s.Location,
			Date:        s.Date,
			Time:        s.Time,
			InitiatorID: s.Initiator,
			ReceiverID:  s.Receiver,
		})
	}
	return sigs, nil
}

// Seed loads the demo data into an empty store. A store that already has
// signals is left alone.
func (s *Store) Seed(ctx context.Context, now time.Time) (int, error) {
	n, err := s.Len(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	sigs, err := SeedSignals(now)
	if err != nil {
		return 0, err
	}
	return s.Append(ctx, sigs)
}
