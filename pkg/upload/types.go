package upload

// FileRef describes an attachment the widget has already stored on local disk.
type FileRef struct {
	Path         string `json:"path"`
	OriginalName string `json:"originalName"`
	MIME         string `json:"mimetype"`
}

type Category string

const (
	CategoryImage       Category = "image"
	CategoryDocument    Category = "document"
	CategoryText        Category = "text"
	CategoryUnsupported Category = "unsupported"
)

type Status string

const (
	StatusPending  Status = "pending"  // received but not forwarded
	StatusReady    Status = "ready"    // readable and of a forwardable type
	StatusError    Status = "error"    // present but could not be read
	StatusNotFound Status = "not_found"
)

// Analysis is the diagnostic view of a single attachment.
type Analysis struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Size     int64    `json:"size"`
	Exists   bool     `json:"exists"`
	Analysis string   `json:"analysis"`
	Status   Status   `json:"upload_status"`
	Category Category `json:"category,omitempty"`
}
