package mqtt

import (
	"context"
	"strings"
	"sync"
)

// dispatch invokes every handler in subs whose filter matches topic.
// It reports whether at least one handler ran.
func dispatch(subs *sync.Map, topic string, payload []byte) bool {
	handled := false
	subs.Range(func(_, value any) bool {
		entry := value.(subscriptionEntry)
		if topicsMatch(topicFilter(entry.topic), topic) {
			entry.handler(context.Background(), topic, payload)
			handled = true
		}
		return true
	})
	return handled
}

// topicsMatch checks whether a concrete topic matches an MQTT topic filter,
// honouring the "+" and "#" wildcards.
func topicsMatch(filter, topic string) bool {
	if filter == topic {
		return true
	}

	if !strings.Contains(filter, "+") && !strings.Contains(filter, "#") {
		return false
	}

	filterParts := strings.Split(filter, "/")
	topicParts := strings.Split(topic, "/")

	for i, part := range filterParts {
		if part == "#" {
			return true
		}
		if i >= len(topicParts) {
			return false
		}
		if part != "+" && part != topicParts[i] {
			return false
		}
	}

	return len(filterParts) == len(topicParts)
}

// topicFilter strips the shared subscription prefix ($share/<group>/) if present.
func topicFilter(filter string) string {
	if strings.HasPrefix(filter, "$share/") {
		parts := strings.SplitN(filter, "/", 3)
		if len(parts) == 3 {
			return parts[2]
		}
	}
	return filter
}
