package noteservice

import (
	"context"
	"log/slog"

	"github.com/starford/quill/internal/models"
)

// Store is the persistence the service needs.
type Store interface {
	Append(ctx context.Context, d models.Draft) (*models.Note, error)
	List(ctx context.Context) ([]models.Note, error)
	Snapshot(ctx context.Context) ([]models.Note, string, error)
	Get(ctx context.Context, id int) (*models.Note, error)
	Checksum(ctx context.Context) (string, error)
}

// Notifier receives an event after every successful append.
type Notifier interface {
	PublishNoteAdded(id int)
}

// Service is the single entry point the presenters use.
type Service struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the append notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a new note service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddNote appends a note built from the raw form input.
// No field is validated; empty strings are stored as given.
func (s *Service) AddNote(ctx context.Context, d models.Draft) (*models.Note, error) {
	n, err := s.store.Append(ctx, d)
	if err != nil {
		s.logger.Error("append note failed", slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.Info("note added", slog.Int("id", n.ID), slog.String("category", n.Category))
	if s.notifier != nil {
		s.notifier.PublishNoteAdded(n.ID)
	}
	return n, nil
}

// ListNotes returns every note in store order, never nil.
func (s *Service) ListNotes(ctx context.Context) ([]models.Note, error) {
	notes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(notes), nil
}

// Snapshot returns every note and the checksum of the content they came from.
func (s *Service) Snapshot(ctx context.Context) ([]models.Note, string, error) {
	notes, sum, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, "", err
	}
	return nonNilSlice(notes), sum, nil
}

// GetNote returns the note with the given id.
func (s *Service) GetNote(ctx context.Context, id int) (*models.Note, error) {
	return s.store.Get(ctx, id)
}

// Checksum fingerprints the current store content.
func (s *Service) Checksum(ctx context.Context) (string, error) {
	return s.store.Checksum(ctx)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
