package report

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/jgivc/casebridge/internal/entity"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	serviceName = "report"

	reportFilePattern = "casebridge-report-%s.yml"
)

// Collector accumulates per-entry outcomes during a run. It never fails the
// batch: persistence problems are logged and swallowed.
type Collector struct {
	mu      sync.Mutex
	results []entity.EntryResult
	log     *slog.Logger
}

func NewCollector(log *slog.Logger) *Collector {
	return &Collector{
		log: log.With(slog.String("service", serviceName)),
	}
}

func (c *Collector) Uploaded(name, remoteID string) {
	c.record(entity.EntryResult{Name: name, Status: entity.StatusUploaded, RemoteID: remoteID})
}

func (c *Collector) Skipped(name string) {
	c.record(entity.EntryResult{Name: name, Status: entity.StatusSkipped})
}

func (c *Collector) Failed(name string, err error) {
	c.log.Error("Entry failed", slog.String("entry", name), slog.Any("error", err))
	c.record(entity.EntryResult{Name: name, Status: entity.StatusFailed, Error: err.Error()})
}

func (c *Collector) record(res entity.EntryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.results = append(c.results, res)
}

// Report returns the accumulated run summary.
func (c *Collector) Report() *entity.RunReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	rep := &entity.RunReport{
		Attempted: len(c.results),
		Results:   append([]entity.EntryResult(nil), c.results...),
	}

	for _, res := range c.results {
		switch res.Status {
		case entity.StatusUploaded:
			rep.Uploaded++
		case entity.StatusSkipped:
			rep.Skipped++
		case entity.StatusFailed:
			rep.Failed++
		}
	}

	return rep
}

// Persist writes the run report under a unique name and returns the file path.
// Best-effort diagnostics only: on failure it returns an empty path.
func (c *Collector) Persist(fs afero.Fs, dir string) string {
	rep := c.Report()

	data, err := yaml.Marshal(rep)
	if err != nil {
		c.log.Error("Cannot marshal run report", slog.Any("error", err))

		return ""
	}

	fileName := filepath.Join(dir, fmt.Sprintf(reportFilePattern, uuid.NewString()))
	if err := afero.WriteFile(fs, fileName, data, 0o644); err != nil {
		c.log.Error("Cannot persist run report", slog.String("path", fileName), slog.Any("error", err))

		return ""
	}

	c.log.Info("Persisted run report", slog.String("path", fileName))

	return fileName
}
