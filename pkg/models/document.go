package models

// DocumentMeta describes one archived long-text document. The content
// itself lives in the archive directory; only metadata is indexed.
type DocumentMeta struct {
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Size      int64  `json:"size"`
	CreatedTS int64  `json:"created_ts"`
}
