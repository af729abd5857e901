package indexjobposting

type Input struct {
	JobPostingID string `json:"jobPostingId"`
}

type Output struct {
	JobPostingID string `json:"jobPostingId"`
	Action       string `json:"indexAction"`
	Status       string `json:"jobStatus,omitempty"`
}

// Index actions.
const (
	ActionIndexed = "indexed"
	ActionDeleted = "deleted"
)
