// Package report collects the styled fragments a scenario attaches while
// it runs. Attachments are observability only: a reporter failing or
// being absent never changes whether a scenario passes.
package report

import (
	"fmt"
	"html"
	"sync"
	"time"
)

// Media types used for attachments.
const (
	MediaHTML  = "text/html"
	MediaPlain = "text/plain"
)

// Reporter accepts fragments for attachment to the running scenario.
type Reporter interface {
	Attach(data, mediaType string) error
}

// Attachment is a single fragment attached to a scenario.
type Attachment struct {
	Data      string    `json:"data"`
	MediaType string    `json:"mediaType"`
	Time      time.Time `json:"time"`
}

// Collector is a Reporter that keeps attachments in memory in the order
// they were attached. It is safe for concurrent use.
type Collector struct {
	mu          sync.Mutex
	attachments []Attachment
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Attach stores a fragment.
func (c *Collector) Attach(data, mediaType string) error {
	if mediaType == "" {
		mediaType = MediaPlain
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attachments = append(c.attachments, Attachment{
		Data:      data,
		MediaType: mediaType,
		Time:      time.Now(),
	})
	return nil
}

// Attachments returns a copy of the stored attachments.
func (c *Collector) Attachments() []Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Attachment, len(c.attachments))
	copy(out, c.attachments)
	return out
}

// Discard is a Reporter that drops everything.
type Discard struct{}

// Attach is a no-op.
func (Discard) Attach(string, string) error { return nil }

// PassFragment renders a green HTML fragment. The text is escaped.
func PassFragment(text string) string {
	return fmt.Sprintf(`<div style="color:green;"> %s </div>`, html.EscapeString(text))
}

// FailFragment renders a red HTML fragment. The text is escaped.
func FailFragment(text string) string {
	return fmt.Sprintf(`<div style="color:red;"> %s </div>`, html.EscapeString(text))
}
