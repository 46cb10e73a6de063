package entity

// EntryStatus is the terminal state of one archive entry.
type EntryStatus string

const (
	StatusUploaded EntryStatus = "uploaded"
	StatusSkipped  EntryStatus = "skipped"
	StatusFailed   EntryStatus = "failed"
)

// EntryResult records the outcome of processing one archive entry.
type EntryResult struct {
	Name     string      `yaml:"name"`
	Status   EntryStatus `yaml:"status"`
	RemoteID string      `yaml:"remote_id,omitempty"`
	Error    string      `yaml:"error,omitempty"`
}

// RunReport summarizes one pipeline run over an archive.
type RunReport struct {
	Attempted int           `yaml:"attempted"`
	Uploaded  int           `yaml:"uploaded"`
	Skipped   int           `yaml:"skipped"`
	Failed    int           `yaml:"failed"`
	Results   []EntryResult `yaml:"results"`
}

// Failures returns the results of entries that ended in StatusFailed.
func (r *RunReport) Failures() []EntryResult {
	var failed []EntryResult
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}

	return failed
}
