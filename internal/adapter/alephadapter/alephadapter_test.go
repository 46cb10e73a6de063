package alephadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jgivc/casebridge/internal/config"
	"github.com/jgivc/casebridge/internal/entity"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&config.AlephConfig{
		Host:   srv.URL + "/",
		APIKey: "secret",
	}, testLogger())
}

func TestIngestUploadWithFile(t *testing.T) {
	var (
		gotAuth string
		gotMeta entity.UploadMetadata
		gotFile string
	)

	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/2/collections/42/ingest", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("meta")), &gotMeta))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		gotFile = string(data)

		fmt.Fprint(w, `{"id": "ent-1", "status": "ok"}`)
	}))

	meta := &entity.UploadMetadata{
		FileName:  "pages/a.mhtml",
		Title:     "A page",
		Generator: entity.Generator,
		SourceURL: "https://example.org/a",
	}

	result, err := cl.IngestUpload(context.Background(), "42", strings.NewReader("<html/>"), meta)
	require.NoError(t, err)

	require.Equal(t, "ent-1", result.ID)
	require.Equal(t, "ok", result.Raw["status"])
	require.Equal(t, "ApiKey secret", gotAuth)
	require.Equal(t, "pages/a.mhtml", gotMeta.FileName)
	require.Equal(t, "https://example.org/a", gotMeta.SourceURL)
	require.Equal(t, "<html/>", gotFile)
}

func TestIngestUploadMetadataOnly(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		var meta map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("meta")), &meta))
		require.Equal(t, "pages", meta["title"])
		require.Equal(t, "pages", meta["foreign_id"])
		require.NotContains(t, meta, "file_name", "folder records carry no file name")

		_, _, err := r.FormFile("file")
		require.Error(t, err, "folder records carry no file part")

		fmt.Fprint(w, `{"id": "folder-1"}`)
	}))

	result, err := cl.IngestUpload(context.Background(), "42", nil, &entity.UploadMetadata{Title: "pages", ForeignID: "pages"})
	require.NoError(t, err)
	require.Equal(t, "folder-1", result.ID)
}

func TestIngestUploadRemoteError(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusForbidden)
	}))

	_, err := cl.IngestUpload(context.Background(), "42", nil, &entity.UploadMetadata{Title: "pages"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}

func TestStreamEntities(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/2/entities/_stream", r.URL.Path)
		require.Equal(t, "42", r.URL.Query().Get("collection_id"))

		fmt.Fprintln(w, `{"id": "ent-1", "schema": "Folder", "properties": {"title": ["pages"]}}`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `{"id": "ent-2", "schema": "Folder", "properties": {"title": ["photos"]}}`)
	}))

	stream, err := cl.StreamEntities(context.Background(), "42")
	require.NoError(t, err)

	var titles []string
	for ent, err := range stream {
		require.NoError(t, err)
		titles = append(titles, ent.Title())
	}

	require.Equal(t, []string{"pages", "photos"}, titles)
}

func TestStreamEntitiesMalformedLine(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{broken`)
	}))

	stream, err := cl.StreamEntities(context.Background(), "42")
	require.NoError(t, err)

	var streamErr error
	for _, err := range stream {
		if err != nil {
			streamErr = err

			break
		}
	}

	require.Error(t, streamErr)
}

func TestCreateCollection(t *testing.T) {
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/2/collections", r.URL.Path)

		var spec entity.CollectionSpec
		require.NoError(t, json.NewDecoder(r.Body).Decode(&spec))
		require.Equal(t, "My Investigation", spec.Label)
		require.Equal(t, "other", spec.Category)

		fmt.Fprint(w, `{"id": "77", "label": "My Investigation"}`)
	}))

	collection, err := cl.CreateCollection(context.Background(), entity.CollectionSpec{
		Label:    "My Investigation",
		Category: "other",
	})
	require.NoError(t, err)
	require.Equal(t, "77", collection.ID)
}

func TestDeleteCollection(t *testing.T) {
	var gotSync string
	cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/2/collections/77", r.URL.Path)
		gotSync = r.URL.Query().Get("sync")

		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, cl.DeleteCollection(context.Background(), "77", true))
	require.Equal(t, "true", gotSync)
}
