package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kidneymate/server/internal/live"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
	"gopkg.in/yaml.v3"
)

// TechniciansTopic is signalled when the roster changes.
const TechniciansTopic = "technicians"

var ErrRosterValidation = errors.New("invalid roster")

type RosterService struct {
	repo repository.TechnicianRepository
	hub  *live.Hub
}

func NewRosterService(repo repository.TechnicianRepository, hub *live.Hub) *RosterService {
	return &RosterService{
		repo: repo,
		hub:  hub,
	}
}

func (s *RosterService) Technicians() ([]*model.Technician, error) {
	techs, err := s.repo.Technicians()
	if err != nil {
		return nil, fmt.Errorf("failed to list technicians: %w", err)
	}
	return techs, nil
}

// Stream is Technicians as a live query.
func (s *RosterService) Stream(ctx context.Context) (*live.Stream[[]*model.Technician], error) {
	return live.Watch(ctx, s.hub, TechniciansTopic, s.Technicians)
}

// Follow signals the roster topic whenever the technicians table changes,
// including writes made by other processes such as kmctl. The first check
// always signals. It blocks until ctx is done.
func (s *RosterService) Follow(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		version, err := s.repo.Version()
		if err != nil {
			slog.Warn("failed to check technician roster", "error", err)
			continue
		}
		if version != last {
			last = version
			s.hub.Publish(TechniciansTopic)
		}
	}
}

type rosterFile struct {
	Technicians []*model.Technician `yaml:"technicians"`
}

// Import reads a YAML roster and upserts every entry by (name, hospital).
// The whole file is validated before anything is written.
func (s *RosterService) Import(r io.Reader) (int, error) {
	var roster rosterFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err := dec.Decode(&roster)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, invalid(ErrRosterValidation, fmt.Sprintf("invalid roster file: %v", err))
	}

	for i, tech := range roster.Technicians {
		tech.Name = strings.TrimSpace(tech.Name)
		tech.Hospital = strings.TrimSpace(tech.Hospital)
		tech.Contact = strings.TrimSpace(tech.Contact)
		tech.Charges = strings.TrimSpace(tech.Charges)

		if tech.Name == "" || tech.Hospital == "" || tech.Contact == "" {
			return 0, invalid(ErrRosterValidation, fmt.Sprintf("technician %d: name, hospital and contact are required", i+1))
		}
	}

	for _, tech := range roster.Technicians {
		err = s.repo.Upsert(tech)
		if err != nil {
			return 0, fmt.Errorf("failed to save technician %q: %w", tech.Name, err)
		}
	}

	if len(roster.Technicians) > 0 {
		s.hub.Publish(TechniciansTopic)
	}

	slog.Info("technician roster imported", "count", len(roster.Technicians))
	return len(roster.Technicians), nil
}
