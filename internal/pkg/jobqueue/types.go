package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeCalendarSync    JobType = "calendar_sync"
	JobTypeBookedSlotsSync JobType = "booked_slots_sync"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	Result      json.RawMessage        `json:"result,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// CalendarSyncJobPayload identifies the calendar to mirror and the location whose token is used
type CalendarSyncJobPayload struct {
	CalendarID string `json:"calendar_id"`
	LocationID string `json:"location_id"`
}

func (p CalendarSyncJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"calendar_id": p.CalendarID,
		"location_id": p.LocationID,
	}
}

func CalendarSyncJobPayloadFromMap(data map[string]interface{}) (*CalendarSyncJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload CalendarSyncJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// BookedSlotsSyncJobPayload identifies the calendar whose upcoming events are mirrored
type BookedSlotsSyncJobPayload struct {
	CalendarID string `json:"calendar_id"`
	LocationID string `json:"location_id"`
}

func (p BookedSlotsSyncJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"calendar_id": p.CalendarID,
		"location_id": p.LocationID,
	}
}

func BookedSlotsSyncJobPayloadFromMap(data map[string]interface{}) (*BookedSlotsSyncJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload BookedSlotsSyncJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
