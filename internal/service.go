package internal

import (
	"log/slog"

	"github.com/starford/quill/internal/notestore"
	"github.com/starford/quill/internal/noteservice"
)

// OpenService opens the configured store and wraps it in a note service.
func OpenService(cfg *Config, logger *slog.Logger, opts ...noteservice.Option) (*noteservice.Service, *notestore.Store, error) {
	store, err := notestore.Open(cfg.Store.Path, cfg.Store.Options())
	if err != nil {
		return nil, nil, err
	}
	opts = append([]noteservice.Option{noteservice.WithLogger(logger)}, opts...)
	return noteservice.NewService(store, opts...), store, nil
}
