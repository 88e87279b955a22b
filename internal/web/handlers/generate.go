package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/compositor"
	"github.com/kozaktomas/adproof/internal/config"
	"github.com/kozaktomas/adproof/internal/database"
	"github.com/kozaktomas/adproof/internal/generate"
)

// GenerateHandler runs webhook generations as async jobs.
type GenerateHandler struct {
	config     *config.Config
	log        zerolog.Logger
	client     *generate.Client
	loader     *compositor.Loader
	jobManager *JobManager
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(cfg *config.Config, log zerolog.Logger, client *generate.Client,
	loader *compositor.Loader, jm *JobManager) *GenerateHandler {
	return &GenerateHandler{
		config:     cfg,
		log:        log,
		client:     client,
		loader:     loader,
		jobManager: jm,
	}
}

// GenerateRequest is the body of POST /ads/{id}/generate
type GenerateRequest struct {
	Kind   generate.Kind `json:"kind"`
	Prompt string        `json:"prompt"`
}

// generateInput is everything a job needs, collected while the request is live.
type generateInput struct {
	ad            *database.Ad
	pub           *database.Publication
	assets        []database.Asset
	selected      *database.Version
	prompt        string
	versions      database.VersionStore
	notifications database.NotificationStore
}

// Start validates the request and starts a generation job
func (h *GenerateHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Kind == "" {
		req.Kind = generate.KindGenerate
	}
	if !req.Kind.IsValid() {
		respondError(w, http.StatusBadRequest, "kind must be generate, big_changes or expand")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Kind == generate.KindBigChanges && req.Prompt == "" {
		respondError(w, http.StatusBadRequest, "prompt is required for big_changes")
		return
	}
	if !h.client.Enabled(req.Kind) {
		respondError(w, http.StatusServiceUnavailable, generate.ErrNotConfigured.Error())
		return
	}

	in, ok := h.collectInput(w, r)
	if !ok {
		return
	}
	in.prompt = req.Prompt
	if req.Kind == generate.KindBigChanges && in.selected == nil {
		respondError(w, http.StatusConflict, "big_changes needs a selected version")
		return
	}

	timeout := time.Duration(h.config.Generate.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	job := h.jobManager.CreateJob(uuid.New().String(), in.ad.ID, req.Kind, cancel)

	go h.runGenerateJob(ctx, job, in)

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"ad_id":  in.ad.ID,
		"kind":   string(req.Kind),
		"status": string(JobStatusPending),
	})
}

func (h *GenerateHandler) collectInput(w http.ResponseWriter, r *http.Request) (*generateInput, bool) {
	ac, ok := loadAd(w, r, h.log, urlID(r))
	if !ok {
		return nil, false
	}
	in := &generateInput{ad: ac.ad, pub: ac.pub}

	ads, err := database.GetAdStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return nil, false
	}
	if in.assets, err = ads.ListAssets(r.Context(), ac.ad.ID); err != nil {
		respondInternal(w, h.log, "failed to list assets", err)
		return nil, false
	}
	if in.versions, err = database.GetVersionStore(r.Context()); err != nil {
		respondStoreError(w, h.log, err)
		return nil, false
	}
	if in.selected, err = in.versions.GetSelectedVersion(r.Context(), ac.ad.ID); err != nil {
		respondInternal(w, h.log, "failed to get selected version", err)
		return nil, false
	}
	if in.notifications, err = database.GetNotificationStore(r.Context()); err != nil {
		respondStoreError(w, h.log, err)
		return nil, false
	}
	return in, true
}

// Status returns the status of a generation job
func (h *GenerateHandler) Status(w http.ResponseWriter, r *http.Request) {
	job := h.jobManager.GetJob(chi.URLParam(r, "jobId"))
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job.Snapshot())
}

// Events streams job events via SSE
func (h *GenerateHandler) Events(w http.ResponseWriter, r *http.Request) {
	job := h.jobManager.GetJob(chi.URLParam(r, "jobId"))
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	streamJob(w, r, job)
}

// Cancel cancels a generation job
func (h *GenerateHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	job := h.jobManager.GetJob(chi.URLParam(r, "jobId"))
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": job.Cancel()})
}

// runGenerateJob calls the webhook and stores the answer as a new selected
// version. Webhook failures leave the ad untouched.
func (h *GenerateHandler) runGenerateJob(ctx context.Context, job *GenerateJob, in *generateInput) {
	defer job.cancel()
	log := h.log.With().Str("job_id", job.ID).Str("ad_id", job.AdID).Str("kind", string(job.Kind)).Logger()

	if !job.start() {
		return
	}
	job.SendEvent(JobEvent{Type: "started", Message: "Generation started"})

	result, err := h.callWebhook(ctx, job.Kind, in, log)
	if err == nil {
		err = result.Require()
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		h.failJob(job, log, fmt.Sprintf("generation failed: %v", err))
		return
	}

	version := &database.Version{
		AdID:       in.ad.ID,
		Source:     database.VersionSourceAI,
		LayoutJSON: result.Layout(),
		PreviewURL: result.ImageURL,
		Status:     database.VersionStatusPending,
	}
	// The job context may already be done once the webhook has answered.
	storeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := in.versions.CreateVersion(storeCtx, version); err != nil {
		h.failJob(job, log, fmt.Sprintf("failed to save version: %v", err))
		return
	}

	n := &database.Notification{
		UserID:   in.ad.UserID,
		Type:     database.NotificationAdGenerated,
		Title:    "New Version Ready",
		Message:  fmt.Sprintf("A new version of %q is ready for review", in.ad.DisplayName()),
		AdID:     in.ad.ID,
		Metadata: map[string]any{"version_id": version.ID, "kind": string(job.Kind)},
	}
	if in.ad.UserID != "" {
		if err := in.notifications.CreateNotification(storeCtx, n); err != nil {
			log.Warn().Err(err).Msg("failed to create notification")
		}
	}

	jobResult := &GenerateJobResult{VersionID: version.ID, PreviewURL: version.PreviewURL}
	if !job.finish(JobStatusCompleted, jobResult, "") {
		return
	}
	log.Info().Str("version_id", version.ID).Msg("generation completed")
	job.SendEvent(JobEvent{Type: "completed", Data: jobResult})
}

func (h *GenerateHandler) callWebhook(ctx context.Context, kind generate.Kind, in *generateInput, log zerolog.Logger) (*generate.Result, error) {
	if kind != generate.KindExpand {
		prompt := ""
		if kind == generate.KindBigChanges {
			prompt = in.prompt
		}
		return h.client.Generate(ctx, generate.BuildRequest(in.ad, in.pub, in.assets, in.selected, prompt))
	}

	var natural *canvas.Size
	if in.selected != nil {
		size, err := h.loader.NaturalSize(ctx, in.selected.PreviewURL)
		if err != nil {
			log.Warn().Err(err).Msg("could not measure selected image, expanding without its size")
		} else {
			natural = &size
		}
	}
	return h.client.Expand(ctx, generate.BuildExpandRequest(in.ad, in.assets, in.selected, natural))
}

func (h *GenerateHandler) failJob(job *GenerateJob, log zerolog.Logger, message string) {
	if !job.finish(JobStatusFailed, nil, message) {
		return
	}
	log.Error().Msg(sanitizeForLog(message))
	job.SendEvent(JobEvent{Type: "job_error", Message: message})
}
