package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/adproof/internal/database"
)

// CatalogHandler serves clients, publications, issues and standard ad sizes.
type CatalogHandler struct {
	log zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{log: log}
}

func (h *CatalogHandler) store(w http.ResponseWriter, r *http.Request) database.CatalogStore {
	store, err := database.GetCatalogStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return nil
	}
	return store
}

// ListClients returns all clients
func (h *CatalogHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	clients, err := store.ListClients(r.Context())
	if err != nil {
		respondInternal(w, h.log, "failed to list clients", err)
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

// CreateClient creates a client
func (h *CatalogHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	store := h.store(w, r)
	if store == nil {
		return
	}
	client := &database.Client{Name: name}
	if err := store.CreateClient(r.Context(), client); err != nil {
		respondInternal(w, h.log, "failed to create client", err)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

// ListPublications returns all publications
func (h *CatalogHandler) ListPublications(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	pubs, err := store.ListPublications(r.Context())
	if err != nil {
		respondInternal(w, h.log, "failed to list publications", err)
		return
	}
	respondJSON(w, http.StatusOK, pubs)
}

// CreatePublication creates a publication with its print defaults
func (h *CatalogHandler) CreatePublication(w http.ResponseWriter, r *http.Request) {
	var pub database.Publication
	if !decodeJSON(w, r, &pub) {
		return
	}
	pub.Name = strings.TrimSpace(pub.Name)
	switch {
	case pub.Name == "":
		respondError(w, http.StatusBadRequest, "name is required")
		return
	case pub.BleedPx < 0 || pub.SafePx < 0 || pub.DPIDefault < 0 || pub.MinFontSize < 0:
		respondError(w, http.StatusBadRequest, "print settings must not be negative")
		return
	}
	for _, p := range pub.SizePresets {
		if p.Width <= 0 || p.Height <= 0 {
			respondError(w, http.StatusBadRequest, "size presets must have positive dimensions")
			return
		}
	}

	store := h.store(w, r)
	if store == nil {
		return
	}
	if err := store.CreatePublication(r.Context(), &pub); err != nil {
		respondInternal(w, h.log, "failed to create publication", err)
		return
	}
	respondJSON(w, http.StatusCreated, pub)
}

// ListIssues returns the issues of a publication
func (h *CatalogHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	issues, err := store.ListPublicationIssues(r.Context(), urlID(r))
	if err != nil {
		respondInternal(w, h.log, "failed to list issues", err)
		return
	}
	respondJSON(w, http.StatusOK, issues)
}

// CreateIssue creates an issue of a publication
func (h *CatalogHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID  string `json:"client_id"`
		IssueDate string `json:"issue_date"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	date, err := time.Parse(time.DateOnly, req.IssueDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "issue_date must be YYYY-MM-DD")
		return
	}

	store := h.store(w, r)
	if store == nil {
		return
	}
	pub, err := store.GetPublication(r.Context(), urlID(r))
	if err != nil {
		respondInternal(w, h.log, "failed to get publication", err)
		return
	}
	if pub == nil {
		respondError(w, http.StatusNotFound, "publication not found")
		return
	}

	issue := &database.PublicationIssue{PublicationID: pub.ID, ClientID: req.ClientID, IssueDate: date}
	if err := store.CreatePublicationIssue(r.Context(), issue); err != nil {
		respondInternal(w, h.log, "failed to create issue", err)
		return
	}
	respondJSON(w, http.StatusCreated, issue)
}

// ListAdSizes returns the standard ad size catalog
func (h *CatalogHandler) ListAdSizes(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	sizes, err := store.ListAdSizes(r.Context())
	if err != nil {
		respondInternal(w, h.log, "failed to list ad sizes", err)
		return
	}
	respondJSON(w, http.StatusOK, sizes)
}
