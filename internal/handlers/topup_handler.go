package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/soathero/backend/internal/logger"
	"github.com/soathero/backend/internal/middleware"
	"github.com/soathero/backend/internal/services"
)

const maxUploadBytes = 10 << 20 // 10 MB, matches the receipt size limit

type TopUpHandler struct {
	service   *services.TopUpService
	documents *services.DocumentService
	validator *services.ValidationHelper
}

func NewTopUpHandler(service *services.TopUpService, documents *services.DocumentService) *TopUpHandler {
	return &TopUpHandler{
		service:   service,
		documents: documents,
		validator: services.NewValidationHelper(),
	}
}

// Create records a recarga
// @Summary Record a top-up
// @Description Record a funds deposit into the bolsa, with optional receipt
// @Tags recargas
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param monto formData int true "Amount in COP"
// @Param referencia formData string false "Bank reference"
// @Param observaciones formData string false "Notes"
// @Param documento_comprobante formData file false "Receipt (PDF/JPG/PNG)"
// @Success 201 {object} models.TopUp
// @Failure 400 {object} services.ErrorResponse
// @Router /recargas [post]
func (h *TopUpHandler) Create(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", "/recargas"))
	defer timer.ObserveDuration()

	actorID := middleware.ActorID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		services.SendErrorResponse(w, "Invalid multipart form", http.StatusBadRequest, nil)
		return
	}

	var form struct {
		Amount    int64  `validate:"required,gt=0"`
		Reference string `validate:"max=255"`
		Notes     string `validate:"max=2000"`
	}
	form.Amount, _ = strconv.ParseInt(r.FormValue("monto"), 10, 64)
	form.Reference = r.FormValue("referencia")
	form.Notes = r.FormValue("observaciones")

	if err := h.validator.ValidateStruct(&form); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	in := services.TopUpInput{Amount: form.Amount}
	if form.Reference != "" {
		in.Reference = &form.Reference
	}
	if form.Notes != "" {
		in.Notes = &form.Notes
	}

	if file, header, err := r.FormFile("documento_comprobante"); err == nil {
		defer file.Close()
		if !allowedReceiptExt(header.Filename) {
			services.SendErrorResponse(w, "Receipt must be PDF, JPG or PNG", http.StatusBadRequest, nil)
			return
		}
		ref, err := h.documents.Store("recargas", file, filepath.Ext(header.Filename))
		if err != nil {
			services.SendErrorResponse(w, "Receipt upload failed", http.StatusInternalServerError, nil)
			return
		}
		in.ReceiptRef = &ref
	}

	topup, err := h.service.RecordTopUp(r.Context(), in, actorID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	topupsTotal.Inc()
	log := logger.FromContext(r.Context())
	log.Info().
		Int64("recarga_id", topup.ID).
		Int64("monto", topup.Amount).
		Int64("actor_id", actorID).
		Msg("recarga registrada")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(topup)
}

// List returns all recargas
// @Summary List top-ups
// @Tags recargas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.TopUp
// @Router /recargas [get]
func (h *TopUpHandler) List(w http.ResponseWriter, r *http.Request) {
	topups, err := h.service.List(r.Context())
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(topups)
}

// AttachReceipt uploads the receipt for an existing recarga
// @Summary Attach a receipt
// @Tags recargas
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recarga id"
// @Param documento_comprobante formData file true "Receipt (PDF/JPG/PNG)"
// @Success 200 {object} map[string]string
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /recargas/{id}/comprobante [post]
func (h *TopUpHandler) AttachReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		services.SendErrorResponse(w, "Invalid recarga id", http.StatusBadRequest, nil)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		services.SendErrorResponse(w, "Invalid multipart form", http.StatusBadRequest, nil)
		return
	}
	file, header, err := r.FormFile("documento_comprobante")
	if err != nil {
		services.SendErrorResponse(w, "Receipt file required", http.StatusBadRequest, nil)
		return
	}
	defer file.Close()
	if !allowedReceiptExt(header.Filename) {
		services.SendErrorResponse(w, "Receipt must be PDF, JPG or PNG", http.StatusBadRequest, nil)
		return
	}

	ref, err := h.documents.Store("recargas", file, filepath.Ext(header.Filename))
	if err != nil {
		services.SendErrorResponse(w, "Receipt upload failed", http.StatusInternalServerError, nil)
		return
	}

	if err := h.service.AttachReceipt(r.Context(), id, ref); err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"documento_comprobante": ref})
}

// DownloadReceipt streams the stored receipt
// @Summary Download a receipt
// @Tags recargas
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Recarga id"
// @Success 200 {file} binary
// @Failure 404 {object} services.ErrorResponse
// @Router /recargas/{id}/comprobante [get]
func (h *TopUpHandler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		services.SendErrorResponse(w, "Invalid recarga id", http.StatusBadRequest, nil)
		return
	}

	topup, err := h.service.Get(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}
	if topup.ReceiptRef == nil {
		services.SendErrorResponse(w, "Receipt not attached", http.StatusNotFound, nil)
		return
	}

	doc, err := h.documents.Open(*topup.ReceiptRef)
	if err != nil {
		services.SendErrorResponse(w, "Receipt not found", http.StatusNotFound, nil)
		return
	}
	defer doc.Close()

	w.Header().Set("Content-Type", contentTypeForRef(*topup.ReceiptRef))
	io.Copy(w, doc)
}

func allowedReceiptExt(filename string) bool {
	switch filepath.Ext(filename) {
	case ".pdf", ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func contentTypeForRef(ref string) string {
	switch filepath.Ext(ref) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}
