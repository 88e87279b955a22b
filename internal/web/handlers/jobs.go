package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/kozaktomas/adproof/internal/constants"
	"github.com/kozaktomas/adproof/internal/generate"
)

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// GenerateJob represents an async webhook generation for one ad.
type GenerateJob struct {
	EventBroadcaster

	ID          string
	AdID        string
	Kind        generate.Kind
	Status      JobStatus
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
	Result      *GenerateJobResult
}

// GetStatus returns the current job status.
func (j *GenerateJob) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// JobView is a point-in-time copy of a job's public fields.
type JobView struct {
	ID          string             `json:"id"`
	AdID        string             `json:"ad_id"`
	Kind        generate.Kind      `json:"kind"`
	Status      JobStatus          `json:"status"`
	Error       string             `json:"error,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Result      *GenerateJobResult `json:"result,omitempty"`
}

// Snapshot returns the job's current view.
func (j *GenerateJob) Snapshot() JobView {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return JobView{
		ID:          j.ID,
		AdID:        j.AdID,
		Kind:        j.Kind,
		Status:      j.Status,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		Result:      j.Result,
	}
}

// Cancel cancels the generation job. Finished jobs are left as they are.
func (j *GenerateJob) Cancel() bool {
	j.mu.Lock()
	if isJobTerminal(j.Status) {
		j.mu.Unlock()
		return false
	}
	now := time.Now()
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
	j.mu.Unlock()
	j.EventBroadcaster.Cancel()
	return true
}

// start moves a pending job to running.
func (j *GenerateJob) start() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != JobStatusPending {
		return false
	}
	j.Status = JobStatusRunning
	return true
}

// finish moves the job to a terminal state unless it was cancelled meanwhile.
func (j *GenerateJob) finish(status JobStatus, result *GenerateJobResult, message string) bool {
	now := time.Now()
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status == JobStatusCancelled {
		return false
	}
	j.Status = status
	j.Result = result
	j.Error = message
	j.CompletedAt = &now
	return true
}

// GenerateJobResult is the version created by a successful job.
type GenerateJobResult struct {
	VersionID  string `json:"version_id"`
	PreviewURL string `json:"preview_url"`
}

// JobEvent represents an event from a job.
type JobEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting for async jobs.
// Embed this in job structs to get AddListener, RemoveListener, and SendEvent methods.
type EventBroadcaster struct {
	cancel    context.CancelFunc
	listeners []chan JobEvent
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan JobEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan JobEvent, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan JobEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event JobEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// Cancel cancels the job via context and sends a cancelled event.
func (b *EventBroadcaster) Cancel() {
	if b.cancel != nil {
		b.cancel()
	}
	b.SendEvent(JobEvent{Type: "cancelled", Message: "Job cancelled by user"})
}

// JobManager manages async jobs.
type JobManager struct {
	jobs map[string]*GenerateJob
	mu   sync.RWMutex
}

// NewJobManager creates a new job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*GenerateJob),
	}
}

// CreateJob creates a new generation job. cancel stops its webhook call.
func (m *JobManager) CreateJob(id, adID string, kind generate.Kind, cancel context.CancelFunc) *GenerateJob {
	job := &GenerateJob{
		ID:        id,
		AdID:      adID,
		Kind:      kind,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
	}
	job.cancel = cancel

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	return job
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *GenerateJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// DeleteJob removes a job.
func (m *JobManager) DeleteJob(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
}

// ListJobs returns all jobs.
func (m *JobManager) ListJobs() []*GenerateJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]*GenerateJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// Prune drops terminal jobs that finished before cutoff.
func (m *JobManager) Prune(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, job := range m.jobs {
		snap := job.Snapshot()
		if isJobTerminal(snap.Status) && snap.CompletedAt != nil && snap.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}
