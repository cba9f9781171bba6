package topic

import (
	"strings"
)

// DefaultRoot is the namespace used when none is configured.
const DefaultRoot = "scootshare"

// TopicBuilder encapsulates the logic for constructing MQTT topic strings.
type TopicBuilder struct {
	// root is the base namespace for all topics (e.g., "scootshare", "fleet/berlin").
	root string
}

// NewTopicBuilder creates a TopicBuilder. Surrounding slashes in root are
// trimmed; an empty root falls back to DefaultRoot.
func NewTopicBuilder(root string) *TopicBuilder {
	root = strings.Trim(root, "/")
	if root == "" {
		root = DefaultRoot
	}
	return &TopicBuilder{root: root}
}

// Root returns the namespace.
func (b *TopicBuilder) Root() string {
	return b.root
}

// Build joins the root and a segment.
// Pattern: {root}/{segment}
func (b *TopicBuilder) Build(segment string) string {
	return b.root + "/" + strings.Trim(segment, "/")
}

// All returns the wildcard matching every topic under the root.
// Result: {root}/#
func (b *TopicBuilder) All() string {
	return b.Build(MultiWildcard)
}

// Any returns the wildcard matching one level below prefix.
// Result: {root}/{prefix}/+
func (b *TopicBuilder) Any(prefix string) string {
	return b.Build(prefix + "/" + Wildcard)
}
