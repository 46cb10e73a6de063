package alephadapter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/jgivc/casebridge/internal/config"
	"github.com/jgivc/casebridge/internal/entity"
)

const (
	apiCollections    = "api/2/collections"
	apiEntitiesStream = "api/2/entities/_stream"

	metaField = "meta"
	fileField = "file"

	defaultTimeout = 5 * time.Minute
)

// Client talks to an Aleph-compatible document-management API. It performs no
// retries, remote failures surface to the caller as errors.
type Client struct {
	host   string
	apiKey string
	hc     *http.Client
	log    *slog.Logger
}

func NewClient(cfg *config.AlephConfig, log *slog.Logger) *Client {
	return &Client{
		host:   cfg.Host,
		apiKey: cfg.APIKey,
		hc:     &http.Client{Timeout: defaultTimeout},
		log:    log.With(slog.String("item", "AlephClient")),
	}
}

// CreateCollection creates a new investigation and returns it.
func (c *Client) CreateCollection(ctx context.Context, spec entity.CollectionSpec) (*entity.Collection, error) {
	if spec.Languages == nil {
		spec.Languages = []string{}
	}

	body, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal collection spec: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.host+apiCollections, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var collection entity.Collection
	if err := c.do(req, &collection); err != nil {
		return nil, fmt.Errorf("cannot create collection: %w", err)
	}

	c.log.Info("Created collection", slog.String("id", collection.ID), slog.String("label", spec.Label))

	return &collection, nil
}

// IngestUpload submits one upload into a collection. A nil file creates a
// metadata-only record (a virtual folder).
func (c *Client) IngestUpload(ctx context.Context, collectionID string, file io.Reader, meta *entity.UploadMetadata) (*entity.UploadResult, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal upload metadata: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField(metaField, string(metaJSON)); err != nil {
		return nil, fmt.Errorf("cannot write meta field: %w", err)
	}

	if file != nil {
		fw, err := mw.CreateFormFile(fileField, meta.FileName)
		if err != nil {
			return nil, fmt.Errorf("cannot create file part: %w", err)
		}

		if _, err := io.Copy(fw, file); err != nil {
			return nil, fmt.Errorf("cannot copy file content: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("cannot finalize form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("%s%s/%s/ingest", c.host, apiCollections, collectionID), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result entity.UploadResult
	raw := make(map[string]any)
	if err := c.do(req, &raw); err != nil {
		return nil, fmt.Errorf("cannot ingest upload: %w", err)
	}

	if id, ok := raw["id"].(string); ok {
		result.ID = id
	}
	result.Raw = raw

	return &result, nil
}

// StreamEntities streams the entity records of a collection. The sequence
// yields a non-nil error at most once, as its final element.
func (c *Client) StreamEntities(ctx context.Context, collectionID string) (iter.Seq2[*entity.Entity, error], error) {
	q := url.Values{}
	q.Set("collection_id", collectionID)

	req, err := c.newRequest(ctx, http.MethodGet, c.host+apiEntitiesStream+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot stream entities: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()

		return nil, c.statusError(resp)
	}

	return func(yield func(*entity.Entity, error) bool) {
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var ent entity.Entity
			if err := json.Unmarshal(line, &ent); err != nil {
				yield(nil, fmt.Errorf("cannot unmarshal entity: %w", err))

				return
			}

			if !yield(&ent, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(nil, fmt.Errorf("cannot read entity stream: %w", err))
		}
	}, nil
}

// DeleteCollection removes a collection. With sync set the call returns only
// after the remote side finished the deletion.
func (c *Client) DeleteCollection(ctx context.Context, id string, sync bool) error {
	u := fmt.Sprintf("%s%s/%s", c.host, apiCollections, id)
	if sync {
		u += "?sync=true"
	}

	req, err := c.newRequest(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("cannot delete collection %s: %w", id, err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}

	req.Header.Set("Authorization", "ApiKey "+c.apiKey)

	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.statusError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode response: %w", err)
	}

	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	return fmt.Errorf("remote api: %s: %s", resp.Status, bytes.TrimSpace(body))
}
