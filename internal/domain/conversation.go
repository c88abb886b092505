package domain

// Status is the lifecycle state of a scripted conversation.
type Status string

const (
	StatusReady      Status = "READY"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// statusNew is a legacy alias for READY still present in records written by
// older seeders.
const statusNew = "NEW"

// ParseStatus maps a stored status string onto the closed Status set.
// Unknown values and the legacy NEW alias read as READY.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusInProgress, StatusCompleted, StatusFailed:
		return Status(s)
	case StatusReady, statusNew:
		return StatusReady
	}
	return StatusReady
}

// CanTransition reports whether moving from s to next is allowed. The only
// forward edges are READY→IN_PROGRESS, IN_PROGRESS→{COMPLETED, FAILED}, and
// →COMPLETED from anywhere (a hangup notification ends any conversation).
func (s Status) CanTransition(next Status) bool {
	switch {
	case next == StatusCompleted:
		return true
	case s == StatusReady && next == StatusInProgress:
		return true
	case s == StatusInProgress && next == StatusFailed:
		return true
	}
	return false
}

// ConversationState is the single persisted record for one scripted call.
// It is created by the seeder with StatusReady and cursor 0, advanced only
// by the conversation engine, and removed by the seeder or via expiry.
type ConversationState struct {
	ConversationID   string
	Script           Script
	CurrentStepIndex int
	Status           Status
	PreSetAttributes map[string]string
	ExpiresAt        int64
	CreatedAt        string
	TestName         string
}
