package folders

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"

	"github.com/jgivc/casebridge/internal/common"
	"github.com/jgivc/casebridge/internal/entity"
)

const (
	serviceName = "folders"
)

type FolderCache interface {
	Get(ctx context.Context, collectionID string) (map[string]string, error)
	Put(ctx context.Context, collectionID, label, id string) error
}

type AlephGateway interface {
	StreamEntities(ctx context.Context, collectionID string) (iter.Seq2[*entity.Entity, error], error)
	IngestUpload(ctx context.Context, collectionID string, file io.Reader, meta *entity.UploadMetadata) (*entity.UploadResult, error)
}

// Service resolves folder labels to remote folder ids. Registration is
// serialized behind a mutex, so one resolver instance never creates the same
// folder twice. Dedup against the remote side stays best-effort: it relies on
// an exact title match over the entity stream.
type Service struct {
	mu    sync.Mutex
	cache FolderCache
	gw    AlephGateway
	log   *slog.Logger
}

func NewService(cache FolderCache, gw AlephGateway, log *slog.Logger) *Service {
	return &Service{
		cache: cache,
		gw:    gw,
		log:   log.With(slog.String("service", serviceName)),
	}
}

// Resolve maps every label to exactly one remote folder id: first from the
// cache, then from existing remote folders with a matching title, finally by
// creating a metadata-only folder record. All resolved ids are written back to
// the cache, so a second Resolve with the same cache issues no remote calls.
func (s *Service) Resolve(ctx context.Context, collectionID string, labels []string) (map[string]string, error) {
	if collectionID == "" {
		return nil, common.ErrCollectionRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cached, err := s.cache.Get(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("cannot consult folder cache: %w", err)
	}

	resolved := make(map[string]string, len(labels))
	for _, label := range labels {
		if id, exists := cached[label]; exists && id != "" {
			resolved[label] = id
		}
	}

	if len(resolved) < len(labels) {
		if err := s.resolveFromStream(ctx, collectionID, labels, resolved); err != nil {
			return nil, err
		}
	}

	for _, label := range labels {
		if _, exists := resolved[label]; exists {
			continue
		}

		id, err := s.createFolder(ctx, collectionID, label)
		if err != nil {
			return nil, err
		}

		resolved[label] = id
		s.putCache(ctx, collectionID, label, id)
	}

	return resolved, nil
}

func (s *Service) resolveFromStream(ctx context.Context, collectionID string, labels []string, resolved map[string]string) error {
	wanted := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if _, exists := resolved[label]; !exists {
			wanted[label] = struct{}{}
		}
	}

	stream, err := s.gw.StreamEntities(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("cannot stream collection entities: %w", err)
	}

	for ent, err := range stream {
		if err != nil {
			return fmt.Errorf("cannot read entity stream: %w", err)
		}

		title := ent.Title()
		if title == "" || ent.ID == "" {
			continue
		}

		// First exact title match wins.
		if _, want := wanted[title]; !want {
			continue
		}

		s.log.Info("Reuse existing folder", slog.String("label", title), slog.String("id", ent.ID))
		resolved[title] = ent.ID
		s.putCache(ctx, collectionID, title, ent.ID)
		delete(wanted, title)

		if len(wanted) == 0 {
			break
		}
	}

	return nil
}

func (s *Service) createFolder(ctx context.Context, collectionID, label string) (string, error) {
	meta := &entity.UploadMetadata{
		Title:     label,
		ForeignID: label,
	}

	result, err := s.gw.IngestUpload(ctx, collectionID, nil, meta)
	if err != nil {
		return "", fmt.Errorf("cannot create folder %s: %w", label, err)
	}

	if result.ID == "" {
		return "", fmt.Errorf("cannot create folder %s: %w", label, common.ErrUploadWithoutID)
	}

	s.log.Info("Created folder", slog.String("label", label), slog.String("id", result.ID))

	return result.ID, nil
}

func (s *Service) putCache(ctx context.Context, collectionID, label, id string) {
	if err := s.cache.Put(ctx, collectionID, label, id); err != nil {
		s.log.Error("Cannot cache folder id", slog.String("label", label), slog.Any("error", err))
	}
}
