package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/adproof/internal/generate"
)

func listenerCount(job *GenerateJob) int {
	job.mu.RLock()
	defer job.mu.RUnlock()
	return len(job.listeners)
}

func TestGenerateHandler_EventsFinishedJob(t *testing.T) {
	env := newTestEnv(t)
	h, jm := newGenerateHandler(t, env, nil)
	job := jm.CreateJob("job-1", "ad-1", generate.KindGenerate, func() {})
	job.finish(JobStatusFailed, nil, "webhook down")

	rec := httptest.NewRecorder()
	h.Events(rec, jsonRequest(t, http.MethodGet, "/", nil, map[string]string{"jobId": "job-1"}))

	assertStatusCode(t, rec, http.StatusOK)
	assertContentType(t, rec, "text/event-stream")
	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: status\ndata: ") || !strings.Contains(body, `"status":"failed"`) {
		t.Errorf("body = %q", body)
	}
	if listenerCount(job) != 0 {
		t.Error("listener not removed")
	}

	rec = httptest.NewRecorder()
	h.Events(rec, jsonRequest(t, http.MethodGet, "/", nil, map[string]string{"jobId": "missing"}))
	assertStatusCode(t, rec, http.StatusNotFound)
}

func TestGenerateHandler_EventsRelaysUntilTerminal(t *testing.T) {
	env := newTestEnv(t)
	h, jm := newGenerateHandler(t, env, nil)
	job := jm.CreateJob("job-1", "ad-1", generate.KindGenerate, func() {})
	job.start()

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Events(rec, jsonRequest(t, http.MethodGet, "/", nil, map[string]string{"jobId": "job-1"}))
	}()

	deadline := time.Now().Add(5 * time.Second)
	for listenerCount(job) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	job.finish(JobStatusCompleted, &GenerateJobResult{VersionID: "v-1"}, "")
	job.SendEvent(JobEvent{Type: "completed", Message: "done"})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not end after the terminal event")
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"status":"running"`) || !strings.Contains(body, "event: completed\n") {
		t.Errorf("body = %q", body)
	}
}
