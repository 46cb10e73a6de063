package entity

// Generator tags every uploaded record with the tool that captured it.
const Generator = "Hunchly"

// UploadMetadata is the metadata object sent with one ingest call. Optional
// fields are omitted from the wire form when empty. ParentID must reference an
// already-created remote entity.
type UploadMetadata struct {
	FileName  string `json:"file_name,omitempty"`
	Title     string `json:"title,omitempty"`
	Generator string `json:"generator,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
	ForeignID string `json:"foreign_id,omitempty"`
}

// UploadResult is the remote response to an ingest call.
type UploadResult struct {
	ID string `json:"id"`

	Raw map[string]any `json:"-"`
}

// Entity is one record of the remote entity stream.
type Entity struct {
	ID         string              `json:"id"`
	Schema     string              `json:"schema"`
	Properties map[string][]string `json:"properties"`
}

// Title returns the first title property, if any.
func (e *Entity) Title() string {
	if titles, ok := e.Properties["title"]; ok && len(titles) > 0 {
		return titles[0]
	}

	return ""
}

// CollectionSpec describes a collection to be created on the remote side.
type CollectionSpec struct {
	Label     string   `json:"label"`
	Casefile  bool     `json:"casefile"`
	Category  string   `json:"category"`
	Languages []string `json:"languages"`
	Summary   string   `json:"summary"`
}

// Collection is the remote response to a collection create call.
type Collection struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
