package project

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

const maxDocumentSize = 8 << 20 // 8MB

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the snapshot routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/documents/{docId}/snapshots", h.List).Methods("GET")
	r.HandleFunc("/documents/{docId}/snapshots", h.Create).Methods("POST")
	r.HandleFunc("/documents/{docId}/snapshots/latest", h.GetLatestSnapshot).Methods("GET")
	r.HandleFunc("/documents/{docId}/snapshots/{version:[0-9]+}", h.GetSnapshot).Methods("GET")
	r.HandleFunc("/documents/{docId}/snapshots/{version:[0-9]+|latest}/thumbnail", h.Thumbnail).Methods("GET")
}

type createResponse struct {
	DocID   string `json:"docId"`
	Version int    `json:"version"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["docId"]

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "document too large"})
		return
	}

	version, err := h.service.Create(r.Context(), docID, data)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{DocID: docID, Version: version})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["docId"]

	snaps, err := h.service.List(r.Context(), docID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snaps)
}

func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["docId"]

	doc, err := h.service.GetLatestSnapshot(r.Context(), docID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	version, err := strconv.Atoi(vars["version"])
	if err != nil || version < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid version"})
		return
	}

	snap, err := h.service.GetSnapshot(r.Context(), vars["docId"], version)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(snap.Document)
}

func (h *Handler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	version := 0
	if v := vars["version"]; v != "latest" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid version"})
			return
		}
		version = n
	}

	png, err := h.service.Thumbnail(r.Context(), vars["docId"], version)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrInvalidDocument), errors.Is(err, ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
