package domain

import "time"

// Attachment is evidence uploaded against a task. Upload itself happens
// elsewhere; the tree only carries the resulting record.
type Attachment struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	MimeType     string       `json:"type"`
	Size         int64        `json:"size"`
	URL          string       `json:"url"`
	UploadStatus UploadStatus `json:"uploadStatus"`
	CreatedAt    time.Time    `json:"createdAt"`
}
