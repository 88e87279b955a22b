package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// sseHeartbeatInterval keeps idle streams open through proxies while a
// webhook call is in flight.
const sseHeartbeatInterval = 15 * time.Second

// isJobTerminal returns true if the job status is a terminal state.
func isJobTerminal(status JobStatus) bool {
	return status == JobStatusCompleted || status == JobStatusFailed || status == JobStatusCancelled
}

// eventStream writes server-sent events to a flushing response.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func openEventStream(w http.ResponseWriter) (*eventStream, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	return &eventStream{w: w, flusher: flusher}, true
}

func (s *eventStream) send(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte(`{}`)
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload)
	s.flusher.Flush()
}

func (s *eventStream) ping() {
	fmt.Fprint(s.w, ": ping\n\n")
	s.flusher.Flush()
}

// streamJob sends the job's snapshot as a "status" event, then relays its
// events until it reaches a terminal state or the client goes away.
func streamJob(w http.ResponseWriter, r *http.Request, job *GenerateJob) {
	stream, ok := openEventStream(w)
	if !ok {
		return
	}

	events := job.AddListener()
	defer job.RemoveListener(events)

	stream.send("status", job.Snapshot())
	if isJobTerminal(job.GetStatus()) {
		return
	}

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			stream.ping()
		case event, ok := <-events:
			if !ok {
				return
			}
			stream.send(event.Type, event)
			if isJobTerminal(job.GetStatus()) {
				return
			}
		}
	}
}
