package langgraph

// ThreadInfo is the search/list representation of a thread.
type ThreadInfo struct {
	ThreadID string `json:"thread_id"`
	Status   string `json:"status,omitempty"`
}

// ThreadState is the raw state document of a thread. The interesting parts
// (interrupt entries, writes, message lists) have no stable schema across
// deployments, so they stay as untyped maps and are interpreted by the
// extraction phases.
type ThreadState struct {
	Metadata map[string]any `json:"metadata,omitempty"`
	Values   map[string]any `json:"values,omitempty"`
	Tasks    []Task         `json:"tasks,omitempty"`
}

// Task is a single task inside a thread state. A non-empty Interrupts list
// marks the thread as waiting for operator input.
type Task struct {
	ID         string           `json:"id,omitempty"`
	Interrupts []map[string]any `json:"interrupts,omitempty"`
}

// IsInterrupted reports whether the thread state is waiting on an interrupt:
// any task carries a non-empty interrupt list, or the metadata status says so.
func IsInterrupted(state *ThreadState) bool {
	if state == nil {
		return false
	}
	for _, task := range state.Tasks {
		if len(task.Interrupts) > 0 {
			return true
		}
	}
	if status, ok := state.Metadata["status"].(string); ok && status == "interrupted" {
		return true
	}
	return false
}
