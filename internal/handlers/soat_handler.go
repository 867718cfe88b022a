package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/soathero/backend/internal/logger"
	"github.com/soathero/backend/internal/middleware"
	"github.com/soathero/backend/internal/models"
	"github.com/soathero/backend/internal/services"
)

type SoatHandler struct {
	issuance  *services.IssuanceService
	revision  *services.RevisionService
	qr        *services.QRService
	documents *services.DocumentService
	validator *services.ValidationHelper
}

func NewSoatHandler(issuance *services.IssuanceService, revision *services.RevisionService, qr *services.QRService, documents *services.DocumentService) *SoatHandler {
	return &SoatHandler{
		issuance:  issuance,
		revision:  revision,
		qr:        qr,
		documents: documents,
		validator: services.NewValidationHelper(),
	}
}

// Create expedites a new SOAT
// @Summary Issue a SOAT
// @Description Price the policy, debit the bolsa and record the issuance
// @Tags soats
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param placa formData string true "Plate"
// @Param tipo_moto formData string true "Vehicle class" Enums(hasta_99cc, 100_200cc)
// @Param cedula formData string false "Owner national id"
// @Param nombre_propietario formData string false "Owner name"
// @Param observaciones formData string false "Notes"
// @Param documento_factura formData file true "Invoice PDF"
// @Param documento_soat formData file true "SOAT certificate PDF"
// @Success 201 {object} models.Issuance
// @Failure 400 {object} services.ErrorResponse
// @Router /soats [post]
func (h *SoatHandler) Create(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", "/soats"))
	defer timer.ObserveDuration()

	actorID := middleware.ActorID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		services.SendErrorResponse(w, "Invalid multipart form", http.StatusBadRequest, nil)
		return
	}

	var form struct {
		Plate        string `validate:"required,max=20"`
		VehicleClass string `validate:"required,oneof=hasta_99cc 100_200cc"`
		NationalID   string `validate:"max=20"`
		OwnerName    string `validate:"max=255"`
		Notes        string `validate:"max=2000"`
	}
	form.Plate = r.FormValue("placa")
	form.VehicleClass = r.FormValue("tipo_moto")
	form.NationalID = r.FormValue("cedula")
	form.OwnerName = r.FormValue("nombre_propietario")
	form.Notes = r.FormValue("observaciones")

	if err := h.validator.ValidateStruct(&form); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	invoiceRef, err := h.storePDF(r, "documento_factura")
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	certificateRef, err := h.storePDF(r, "documento_soat")
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	in := services.IssueInput{
		Plate:          form.Plate,
		VehicleClass:   models.VehicleClass(form.VehicleClass),
		InvoiceRef:     &invoiceRef,
		CertificateRef: &certificateRef,
	}
	if form.NationalID != "" {
		in.NationalID = &form.NationalID
	}
	if form.OwnerName != "" {
		in.OwnerName = &form.OwnerName
	}
	if form.Notes != "" {
		in.Notes = &form.Notes
	}

	issuance, err := h.issuance.Issue(r.Context(), in, actorID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	issuancesTotal.Inc()
	log := logger.FromContext(r.Context())
	log.Info().
		Int64("soat_id", issuance.ID).
		Str("placa", issuance.Plate).
		Int64("valor_soat", issuance.BasePremium).
		Int64("actor_id", actorID).
		Msg("soat expedido")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(issuance)
}

// List returns expedited SOATs
// @Summary List SOATs
// @Tags soats
// @Produce json
// @Security BearerAuth
// @Param placa query string false "Plate prefix filter"
// @Success 200 {array} models.Issuance
// @Router /soats [get]
func (h *SoatHandler) List(w http.ResponseWriter, r *http.Request) {
	issuances, err := h.issuance.List(r.Context(), r.URL.Query().Get("placa"))
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(issuances)
}

// Get returns one SOAT
// @Summary Get a SOAT
// @Tags soats
// @Produce json
// @Security BearerAuth
// @Param id path int true "SOAT id"
// @Success 200 {object} models.Issuance
// @Failure 404 {object} services.ErrorResponse
// @Router /soats/{id} [get]
func (h *SoatHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		services.SendErrorResponse(w, "Invalid soat id", http.StatusBadRequest, nil)
		return
	}

	issuance, err := h.issuance.Get(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(issuance)
}

// Update revises an expedited SOAT
// @Summary Revise a SOAT
// @Description Edit policy fields; a vehicle class change adjusts the bolsa automatically
// @Tags soats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "SOAT id"
// @Param patch body object{placa=string,cedula=string,nombre_propietario=string,tipo_moto=string,observaciones=string} true "Fields to change"
// @Success 200 {object} models.Issuance
// @Failure 404 {object} services.ErrorResponse
// @Router /soats/{id} [put]
func (h *SoatHandler) Update(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("PUT", "/soats/{id}"))
	defer timer.ObserveDuration()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		services.SendErrorResponse(w, "Invalid soat id", http.StatusBadRequest, nil)
		return
	}
	actorID := middleware.ActorID(r.Context())

	var req struct {
		Plate        *string `json:"placa" validate:"omitempty,max=20"`
		NationalID   *string `json:"cedula" validate:"omitempty,max=20"`
		OwnerName    *string `json:"nombre_propietario" validate:"omitempty,max=255"`
		VehicleClass *string `json:"tipo_moto" validate:"omitempty,oneof=hasta_99cc 100_200cc"`
		Notes        *string `json:"observaciones" validate:"omitempty,max=2000"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	patch := services.RevisePatch{
		Plate:      req.Plate,
		NationalID: req.NationalID,
		OwnerName:  req.OwnerName,
		Notes:      req.Notes,
	}
	if req.VehicleClass != nil {
		class := models.VehicleClass(*req.VehicleClass)
		patch.VehicleClass = &class
	}

	issuance, err := h.revision.Revise(r.Context(), id, patch, actorID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	revisionsTotal.Inc()
	log := logger.FromContext(r.Context())
	log.Info().
		Int64("soat_id", issuance.ID).
		Int64("actor_id", actorID).
		Msg("soat revisado")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(issuance)
}

// AttachPolicy uploads the póliza PDF after issuance
// @Summary Attach the policy document
// @Tags soats
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "SOAT id"
// @Param documento_poliza formData file true "Policy PDF"
// @Success 200 {object} map[string]string
// @Failure 409 {object} services.ErrorResponse
// @Router /soats/{id}/poliza [post]
func (h *SoatHandler) AttachPolicy(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		services.SendErrorResponse(w, "Invalid soat id", http.StatusBadRequest, nil)
		return
	}

	ref, err := h.storePDF(r, "documento_poliza")
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := h.issuance.AttachPolicy(r.Context(), id, ref); err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"documento_poliza": ref})
}

// Document streams a stored SOAT document
// @Summary Download a SOAT document
// @Tags soats
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "SOAT id"
// @Param tipo path string true "Document" Enums(factura, soat, poliza)
// @Success 200 {file} binary
// @Failure 404 {object} services.ErrorResponse
// @Router /soats/{id}/documento/{tipo} [get]
func (h *SoatHandler) Document(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		services.SendErrorResponse(w, "Invalid soat id", http.StatusBadRequest, nil)
		return
	}

	issuance, err := h.issuance.Get(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	var ref *string
	switch chi.URLParam(r, "tipo") {
	case "factura":
		ref = issuance.InvoiceRef
	case "soat":
		ref = issuance.CertificateRef
	case "poliza":
		ref = issuance.PolicyRef
	default:
		services.SendErrorResponse(w, "Unknown document type", http.StatusBadRequest, nil)
		return
	}
	if ref == nil {
		services.SendErrorResponse(w, "Document not attached", http.StatusNotFound, nil)
		return
	}

	doc, err := h.documents.Open(*ref)
	if err != nil {
		services.SendErrorResponse(w, "Document not found", http.StatusNotFound, nil)
		return
	}
	defer doc.Close()

	w.Header().Set("Content-Type", contentTypeForRef(*ref))
	io.Copy(w, doc)
}

// VerifyQR returns a verification QR for the SOAT
// @Summary Generate a verification QR
// @Tags soats
// @Produce png
// @Security BearerAuth
// @Param id path int true "SOAT id"
// @Success 200 {file} binary
// @Failure 404 {object} services.ErrorResponse
// @Router /soats/{id}/verify-qr [get]
func (h *SoatHandler) VerifyQR(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		services.SendErrorResponse(w, "Invalid soat id", http.StatusBadRequest, nil)
		return
	}

	token, png, err := h.qr.GenerateVerification(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Verification-Token", token)
	w.Write(png)
}

// Verify resolves a scanned verification token
// @Summary Verify a scanned SOAT code
// @Tags soats
// @Accept json
// @Produce json
// @Param request body object{token=string} true "Scanned token"
// @Success 200 {object} services.VerificationPayload
// @Failure 400 {object} services.ErrorResponse
// @Router /soats/verify [post]
func (h *SoatHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token" validate:"required"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	payload, err := h.qr.Verify(r.Context(), req.Token)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"valido": true,
		"soat":   payload,
	})
}

// Revisions returns the audit trail for one SOAT
// @Summary List SOAT revisions
// @Tags soats
// @Produce json
// @Security BearerAuth
// @Param id path int true "SOAT id"
// @Success 200 {array} models.Revision
// @Failure 404 {object} services.ErrorResponse
// @Router /soats/{id}/revisiones [get]
func (h *SoatHandler) Revisions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		services.SendErrorResponse(w, "Invalid soat id", http.StatusBadRequest, nil)
		return
	}

	if _, err := h.issuance.Get(r.Context(), id); err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	revisions, err := h.revision.Revisions(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(revisions)
}

func (h *SoatHandler) storePDF(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", fmt.Errorf("invalid multipart form")
		}
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("%s file required", field)
	}
	defer file.Close()

	if filepath.Ext(header.Filename) != ".pdf" {
		return "", fmt.Errorf("%s must be a PDF", field)
	}
	return h.documents.Store("soats", file, ".pdf")
}
