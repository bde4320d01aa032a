package n8n

import "fmt"

// ExecutionStatus is the closed set of execution states the n8n API reports.
// The wire strings are exact lowercase values.
type ExecutionStatus string

const (
	StatusError   ExecutionStatus = "error"
	StatusSuccess ExecutionStatus = "success"
	StatusWaiting ExecutionStatus = "waiting"
)

// ParseExecutionStatus validates a status filter value against the closed set.
func ParseExecutionStatus(s string) (ExecutionStatus, error) {
	switch ExecutionStatus(s) {
	case StatusError, StatusSuccess, StatusWaiting:
		return ExecutionStatus(s), nil
	}
	return "", fmt.Errorf("invalid execution status %q (must be 'error', 'success' or 'waiting')", s)
}

func (s ExecutionStatus) String() string { return string(s) }

// MarshalText implements encoding.TextMarshaler.
func (s ExecutionStatus) MarshalText() ([]byte, error) {
	if _, err := ParseExecutionStatus(string(s)); err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, rejecting values
// outside the closed set.
func (s *ExecutionStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseExecutionStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SaveDataMode is the all-or-none flag n8n uses for execution data retention.
type SaveDataMode string

const (
	SaveAll  SaveDataMode = "all"
	SaveNone SaveDataMode = "none"
)

// ParseSaveDataMode validates an all-or-none value against the closed set.
func ParseSaveDataMode(s string) (SaveDataMode, error) {
	switch SaveDataMode(s) {
	case SaveAll, SaveNone:
		return SaveDataMode(s), nil
	}
	return "", fmt.Errorf("invalid save data mode %q (must be 'all' or 'none')", s)
}

func (m SaveDataMode) String() string { return string(m) }

// MarshalText implements encoding.TextMarshaler.
func (m SaveDataMode) MarshalText() ([]byte, error) {
	if _, err := ParseSaveDataMode(string(m)); err != nil {
		return nil, err
	}
	return []byte(m), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SaveDataMode) UnmarshalText(text []byte) error {
	parsed, err := ParseSaveDataMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// WorkflowSettings is the settings block sent when creating or updating a
// workflow. Field names match the n8n API's camelCase wire format.
type WorkflowSettings struct {
	SaveExecutionProgress    bool         `json:"saveExecutionProgress"`
	SaveManualExecutions     bool         `json:"saveManualExecutions"`
	SaveDataErrorExecution   SaveDataMode `json:"saveDataErrorExecution"`
	SaveDataSuccessExecution SaveDataMode `json:"saveDataSuccessExecution"`
	ExecutionTimeout         int          `json:"executionTimeout"`
}

// DefaultWorkflowSettings returns the settings applied when the caller does
// not supply any: retain all execution data, one hour timeout.
func DefaultWorkflowSettings() WorkflowSettings {
	return WorkflowSettings{
		SaveDataErrorExecution:   SaveAll,
		SaveDataSuccessExecution: SaveAll,
		ExecutionTimeout:         3600,
	}
}

// TagRef is the {"id": ...} element used when assigning tags to a workflow.
type TagRef struct {
	ID string `json:"id"`
}
