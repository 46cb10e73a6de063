package folders

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"testing"

	"github.com/jgivc/casebridge/internal/entity"
	"github.com/jgivc/casebridge/internal/repository/foldercache"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type fakeGateway struct {
	entities    []*entity.Entity
	created     []string
	streamCalls int
}

func (g *fakeGateway) StreamEntities(_ context.Context, _ string) (iter.Seq2[*entity.Entity, error], error) {
	g.streamCalls++

	return func(yield func(*entity.Entity, error) bool) {
		for _, ent := range g.entities {
			if !yield(ent, nil) {
				return
			}
		}
	}, nil
}

func (g *fakeGateway) IngestUpload(_ context.Context, _ string, _ io.Reader, meta *entity.UploadMetadata) (*entity.UploadResult, error) {
	g.created = append(g.created, meta.Title)

	return &entity.UploadResult{ID: fmt.Sprintf("created-%s", meta.Title)}, nil
}

func folderEntity(id, title string) *entity.Entity {
	return &entity.Entity{
		ID:         id,
		Schema:     "Folder",
		Properties: map[string][]string{"title": {title}},
	}
}

func TestResolveReusesExistingFolder(t *testing.T) {
	gw := &fakeGateway{entities: []*entity.Entity{
		folderEntity("ent-1", "pages"),
		folderEntity("ent-2", "unrelated"),
	}}
	srv := NewService(foldercache.NewMemoryCache(nil), gw, testLogger())

	ids, err := srv.Resolve(context.Background(), "42", []string{"pages", "photos"})
	require.NoError(t, err)

	require.Equal(t, map[string]string{
		"pages":  "ent-1",
		"photos": "created-photos",
	}, ids)
	require.Equal(t, []string{"photos"}, gw.created)
}

func TestResolveIdempotentWithSharedCache(t *testing.T) {
	gw := &fakeGateway{entities: []*entity.Entity{folderEntity("ent-1", "pages")}}
	cache := foldercache.NewMemoryCache(nil)
	srv := NewService(cache, gw, testLogger())

	first, err := srv.Resolve(context.Background(), "42", []string{"pages", "photos"})
	require.NoError(t, err)

	second, err := srv.Resolve(context.Background(), "42", []string{"pages", "photos"})
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, []string{"photos"}, gw.created, "second run must not create folders")
	require.Equal(t, 1, gw.streamCalls, "second run must not consult the stream")
}

func TestResolveSeededCache(t *testing.T) {
	gw := &fakeGateway{}
	cache := foldercache.NewMemoryCache(map[string]map[string]string{
		"42": {"pages": "seeded-1", "photos": "seeded-2"},
	})
	srv := NewService(cache, gw, testLogger())

	ids, err := srv.Resolve(context.Background(), "42", []string{"pages", "photos"})
	require.NoError(t, err)

	require.Equal(t, map[string]string{"pages": "seeded-1", "photos": "seeded-2"}, ids)
	require.Empty(t, gw.created)
	require.Zero(t, gw.streamCalls)
}

func TestResolveFirstTitleMatchWins(t *testing.T) {
	gw := &fakeGateway{entities: []*entity.Entity{
		folderEntity("ent-1", "pages"),
		folderEntity("ent-2", "pages"),
	}}
	srv := NewService(foldercache.NewMemoryCache(nil), gw, testLogger())

	ids, err := srv.Resolve(context.Background(), "42", []string{"pages"})
	require.NoError(t, err)
	require.Equal(t, "ent-1", ids["pages"])
}

func TestResolveRequiresCollection(t *testing.T) {
	srv := NewService(foldercache.NewMemoryCache(nil), &fakeGateway{}, testLogger())

	_, err := srv.Resolve(context.Background(), "", []string{"pages"})
	require.Error(t, err)
}
