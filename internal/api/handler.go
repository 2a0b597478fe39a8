package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eugenenazirov/quality-control/internal/export"
	"github.com/eugenenazirov/quality-control/internal/inspection"
	"github.com/eugenenazirov/quality-control/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the ledger storage into HTTP handlers.
type Handler struct {
	storage storage.Storage

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRegisterPiece(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if req.Weight == nil || req.Length == nil {
		writeError(w, http.StatusBadRequest, "Invalid piece", "weight and length are required")
		return
	}

	piece, err := inspection.ValidatePiece(req.ID, *req.Weight, req.Color, *req.Length)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid piece", err.Error())
		return
	}

	// Duplicates are still recorded by the ledger as rejections.
	result := h.storage.Inspect(piece)
	if !result.Approved && result.RejectionReason == inspection.DuplicateReason {
		writeError(w, http.StatusConflict, "Duplicate piece",
			fmt.Sprintf("piece %q: %s", result.ID, inspection.ErrDuplicateID),
			"Remove the existing piece before inspecting it again")
		return
	}

	writeJSON(w, http.StatusCreated, pieceResponse{
		Piece:  result,
		Status: result.Status(),
	})
}

func (h *Handler) handleListPieces(w http.ResponseWriter, r *http.Request) {
	resp := listPiecesResponse{}
	switch status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))); status {
	case "":
		resp.Approved = h.storage.Approved()
		resp.Rejected = h.storage.Rejected()
	case inspection.StatusApproved:
		resp.Approved = h.storage.Approved()
	case inspection.StatusRejected:
		resp.Rejected = h.storage.Rejected()
	default:
		writeError(w, http.StatusBadRequest, "Invalid status", "status must be approved or rejected")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetPiece(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	piece, ok := h.storage.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Piece not found", fmt.Sprintf("no piece with id %q", id))
		return
	}
	writeJSON(w, http.StatusOK, pieceResponse{Piece: piece, Status: piece.Status()})
}

func (h *Handler) handleRemovePiece(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if !h.storage.Remove(id) {
		writeError(w, http.StatusNotFound, "Piece not found", fmt.Sprintf("no piece with id %q", id))
		return
	}
	writeJSON(w, http.StatusOK, removeResponse{
		ID:      id,
		Message: "Piece removed successfully",
	})
}

func (h *Handler) handleListBoxes(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, boxesResponse{
		Capacity: inspection.BoxCapacity,
		Closed:   h.storage.ClosedBoxes(),
		Open:     h.storage.OpenBox(),
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	_ = r
	report := h.storage.Report()
	writeJSON(w, http.StatusOK, reportResponse{
		Report:      report,
		Reasons:     report.SortedReasons(),
		GeneratedAt: h.clock(),
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	format := export.FormatJSON
	if raw := query.Get("format"); raw != "" {
		parsed, err := export.ParseFormat(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid format", err.Error())
			return
		}
		format = parsed
	}
	sheet := query.Get("sheet")

	pieces, report := h.storage.Snapshot()
	wb := export.Build(pieces, report)

	var buf bytes.Buffer
	if err := export.Encode(&buf, format, wb, sheet); err != nil {
		if errors.Is(err, export.ErrUnknownSheet) {
			writeError(w, http.StatusBadRequest, "Invalid sheet", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	if format == export.FormatCSV {
		if sheet == "" {
			sheet = export.SheetSummary
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sheet+".csv"))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

var contentTypes = map[export.Format]string{
	export.FormatCSV:  "text/csv; charset=utf-8",
	export.FormatJSON: "application/json",
	export.FormatYAML: "application/yaml",
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type registerRequest struct {
	ID     string   `json:"id"`
	Weight *float64 `json:"weight"`
	Color  string   `json:"color"`
	Length *float64 `json:"length"`
}

type pieceResponse struct {
	Piece  inspection.Piece `json:"piece"`
	Status string           `json:"status"`
}

type listPiecesResponse struct {
	Approved []inspection.Piece `json:"approved,omitempty"`
	Rejected []inspection.Piece `json:"rejected,omitempty"`
}

type removeResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type boxesResponse struct {
	Capacity int              `json:"capacity"`
	Closed   []inspection.Box `json:"closed"`
	Open     inspection.Box   `json:"open"`
}

type reportResponse struct {
	inspection.Report
	Reasons     []inspection.ReasonCount `json:"reasons"`
	GeneratedAt time.Time                `json:"generatedAt"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
