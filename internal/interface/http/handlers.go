package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/pantau-kelas/monitoring-hub/internal/application/command"
	"github.com/pantau-kelas/monitoring-hub/internal/application/query"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/record"
	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
	"github.com/pantau-kelas/monitoring-hub/pkg/logger"
)

// validate checks request DTOs before they reach the command layer, so
// malformed payloads are rejected with a field-level message instead of
// a generic domain error.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Monitoring Hub API",
		"version":     "v1",
		"description": "REST API untuk monitoring pagi - presensi dan penilaian harian",
		"endpoints": map[string]string{
			"health":     "/health",
			"records":    "/api/v1/records",
			"statistics": "/api/v1/statistics",
			"classes":    "/api/v1/classes",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListRecords handles GET /api/v1/records
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListRecordsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Record listing is not configured")
		return
	}

	q := query.ListRecordsQuery{
		ClassName: getQueryParam(r, "class", ""),
		Date:      getQueryParam(r, "date", ""),
		Limit:     getQueryParamInt(r, "limit", 0),
	}

	result, err := s.deps.ListRecordsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to list records")
		return
	}

	meta := &ResponseMeta{
		TotalCount: result.TotalCount,
		FromCache:  result.FromCache,
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, meta)
}

// saveRecordRequest is the payload for POST /api/v1/records.
type saveRecordRequest struct {
	ID          string `json:"id" validate:"omitempty,uuid4"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	ClassName   string `json:"className" validate:"required"`
	TeacherName string `json:"teacherName" validate:"required"`

	// Subject is optional; empty derives it from the date's weekday.
	Subject string `json:"subject"`

	StudentScores   []record.StudentScore  `json:"studentScores" validate:"required,min=1"`
	TeacherAnalysis string                 `json:"teacherAnalysis"`
	Recommendations record.Recommendations `json:"recommendations"`
}

// handleSaveRecord handles POST /api/v1/records
func (s *Server) handleSaveRecord(w http.ResponseWriter, r *http.Request) {
	if s.deps.SaveRecordHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Record saving is not configured")
		return
	}

	var req saveRecordRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	cmd := command.SaveRecordCommand{
		RecordID:        req.ID,
		Date:            req.Date,
		ClassName:       req.ClassName,
		TeacherName:     req.TeacherName,
		Subject:         req.Subject,
		StudentScores:   req.StudentScores,
		TeacherAnalysis: req.TeacherAnalysis,
		Recommendations: req.Recommendations,
		CorrelationID:   getRequestID(r.Context()),
	}

	result, err := s.deps.SaveRecordHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to save record")
		return
	}

	status := http.StatusCreated
	if result.Overwrote {
		status = http.StatusOK
	}

	s.logger.Info("record saved",
		logger.RecordID(result.RecordID),
		logger.ClassName(req.ClassName),
		logger.RecordDate(req.Date),
		logger.Subject(string(result.Subject)),
	)

	writeJSON(w, status, map[string]interface{}{
		"record_id": result.RecordID,
		"subject":   result.Subject,
		"overwrote": result.Overwrote,
		"saved_at":  result.SavedAt,
	})
}

// handleGetRecord handles GET /api/v1/records/{id}
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	recordID := r.PathValue("id")
	if recordID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Record ID is required")
		return
	}

	if s.deps.GetRecordHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Record lookup is not configured")
		return
	}

	rec, err := s.deps.GetRecordHandler.Handle(r.Context(), query.GetRecordQuery{RecordID: recordID})
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to get record")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteRecord handles DELETE /api/v1/records/{id}
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	recordID := r.PathValue("id")
	if recordID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Record ID is required")
		return
	}

	if s.deps.DeleteRecordHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Record deletion is not configured")
		return
	}

	cmd := command.DeleteRecordCommand{
		RecordID:      recordID,
		Role:          shared.RoleAdmin,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.DeleteRecordHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to delete record")
		return
	}

	s.logger.Info("record deleted",
		logger.RecordID(result.RecordID),
		logger.ClassName(result.ClassID),
	)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record_id":  result.RecordID,
		"class_id":   result.ClassID,
		"deleted_at": result.DeletedAt,
	})
}

// handleExportRecord handles GET /api/v1/records/{id}/export
//
// Query parameters:
//
//	narrative=true  include the stored narrative section
//	format=json     return the table projection instead of a document
func (s *Server) handleExportRecord(w http.ResponseWriter, r *http.Request) {
	recordID := r.PathValue("id")
	if recordID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Record ID is required")
		return
	}

	if s.deps.BuildExportHandler == nil || s.deps.ExportView == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Export is not configured")
		return
	}

	q := query.BuildExportQuery{
		RecordID:         recordID,
		IncludeNarrative: getQueryParamBool(r, "narrative"),
	}

	table, err := s.deps.BuildExportHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to build export")
		return
	}

	if getQueryParam(r, "format", "doc") == "json" {
		writeJSON(w, http.StatusOK, table)
		return
	}

	doc, err := s.deps.ExportView.RenderHTML(table)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to render export")
		return
	}

	w.Header().Set("Content-Type", "application/msword; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.deps.ExportView.FileName(table)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// handleGetStatistics handles GET /api/v1/statistics
func (s *Server) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStatisticsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Statistics are not configured")
		return
	}

	q := query.GetStatisticsQuery{
		ClassName: getQueryParam(r, "class", ""),
		FromDate:  getQueryParam(r, "from", ""),
		ToDate:    getQueryParam(r, "to", ""),
	}

	result, err := s.deps.GetStatisticsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to compute statistics")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListClasses handles GET /api/v1/classes
func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	if s.deps.Registry == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Class registry is not configured")
		return
	}

	classes, err := s.deps.Registry.ListClasses(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to list classes")
		return
	}

	meta := &ResponseMeta{TotalCount: len(classes)}
	writeJSONWithMeta(w, r, http.StatusOK, map[string]interface{}{"classes": classes}, meta)
}

// registerClassRequest is the payload for POST /api/v1/classes.
type registerClassRequest struct {
	Name            string   `json:"name" validate:"required"`
	HomeroomTeacher string   `json:"homeroomTeacher"`
	StudentNames    []string `json:"studentNames" validate:"required,min=1,dive,required"`
}

// handleRegisterClass handles POST /api/v1/classes
func (s *Server) handleRegisterClass(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterClassHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Class registration is not configured")
		return
	}

	var req registerClassRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	cmd := command.RegisterClassCommand{
		Name:            req.Name,
		HomeroomTeacher: req.HomeroomTeacher,
		StudentNames:    req.StudentNames,
		CorrelationID:   getRequestID(r.Context()),
	}

	result, err := s.deps.RegisterClassHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to register class")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"class_id":      result.ClassID,
		"class_name":    result.ClassName,
		"student_count": result.StudentCount,
		"registered_at": result.RegisteredAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMINISTRATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// synthesizeRequest is the payload for POST /api/v1/admin/synthesize.
type synthesizeRequest struct {
	BaseDate     string   `json:"baseDate" validate:"required,datetime=2006-01-02"`
	DocsPerClass int      `json:"docsPerClass" validate:"required,min=1,max=4"`
	ClassNames   []string `json:"classNames" validate:"required,min=1,dive,required"`
	SubjectMode  string   `json:"subjectMode" validate:"omitempty,oneof=fixed per-date"`
	FixedSubject string   `json:"fixedSubject"`
	TeacherName  string   `json:"teacherName"`
}

// handleSynthesize handles POST /api/v1/admin/synthesize
func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if s.deps.SynthesizeHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Bulk synthesis is not configured")
		return
	}

	var req synthesizeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	mode := command.SubjectMode(req.SubjectMode)
	if mode == "" {
		mode = command.SubjectModePerDate
	}

	cmd := command.SynthesizeRecordsCommand{
		BaseDate:      req.BaseDate,
		DocsPerClass:  req.DocsPerClass,
		ClassNames:    req.ClassNames,
		SubjectMode:   mode,
		FixedSubject:  req.FixedSubject,
		TeacherName:   req.TeacherName,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.SynthesizeHandler.Handle(r.Context(), cmd)
	if err != nil {
		// Partial batches stay persisted; report what survived.
		if result != nil && result.SavedCount > 0 {
			writeJSONErrorWithDetails(w, http.StatusInternalServerError, "synthesis_aborted",
				fmt.Sprintf("Generation aborted after %d of %d records", result.SavedCount, result.TotalCount),
				err.Error())
			return
		}
		s.writeDomainError(w, r, err, "Failed to synthesize records")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"run_id":      result.RunID,
		"saved_count": result.SavedCount,
		"total_count": result.TotalCount,
		"duration_ms": result.Duration.Milliseconds(),
	})
}

// adminLoginRequest is the payload for POST /api/v1/admin/login.
type adminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// handleAdminLogin verifies the admin password so the entry form can
// unlock its management panel before issuing guarded requests.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if s.adminAuth == nil {
		writeJSONError(w, http.StatusForbidden, "admin_disabled", "Administrative endpoints are not configured")
		return
	}

	var req adminLoginRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if !s.adminAuth.Verify(req.Password) {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid admin password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"role": shared.RoleAdmin})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DECODING AND ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation. On failure it writes the error response and returns false.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload", err.Error())
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeJSONErrorWithDetails(w, http.StatusBadRequest, "validation_failed",
				"Request validation failed",
				fmt.Sprintf("field %s failed on the %s rule", verrs[0].Field(), verrs[0].Tag()))
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "validation_failed", "Request validation failed")
		return false
	}

	return true
}

// writeDomainError maps a domain error to an HTTP status and logs it.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		status = http.StatusInternalServerError
		code   = "internal_error"
	)

	switch {
	case shared.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case shared.IsAlreadyExists(err):
		status, code = http.StatusConflict, "already_exists"
	case errors.Is(err, shared.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, shared.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case shared.IsValidation(err):
		status, code = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, shared.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "rate_limited"
	case shared.IsExternalService(err):
		status, code = http.StatusBadGateway, "upstream_error"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
	}

	var derr *shared.DomainError
	if errors.As(err, &derr) {
		writeJSONError(w, status, code, derr.Message)
		return
	}

	writeJSONError(w, status, code, fallback)
}
