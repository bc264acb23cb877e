package events

import "testing"

func TestTopicForStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"confirmed", VisitConfirmed},
		{"completed", VisitCompleted},
		{"cancelled", VisitCancelled},
		// creation and deletion have their own publish sites
		{"scheduled", ""},
		{"", ""},
		{"approved", ""},
	}

	for _, tt := range tests {
		if got := TopicForStatus(tt.status); got != tt.want {
			t.Errorf("TopicForStatus(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestLifecycleTopicsAreDistinct(t *testing.T) {
	topics := []string{VisitCreated, VisitConfirmed, VisitCompleted, VisitCancelled, VisitDeleted}
	seen := make(map[string]bool, len(topics))
	for _, topic := range topics {
		if seen[topic] {
			t.Errorf("duplicate topic %q", topic)
		}
		seen[topic] = true
	}
}
