package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/privasee/footprint/internal/models"
	"github.com/privasee/footprint/internal/queue"
	"github.com/privasee/footprint/internal/reports"
	"github.com/privasee/footprint/internal/store"
)

func (s *Server) getConsent(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return
	}

	consent, err := s.store.GetConsent(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if consent == nil {
		// No record means nothing has been permitted yet.
		consent = &models.ConsentRecord{UserID: userID}
	}

	respondJSON(w, http.StatusOK, consent)
}

type updateConsentRequest struct {
	DataProcessing bool `json:"data_processing"`
	BreachLookup   bool `json:"breach_lookup"`
	SocialScan     bool `json:"social_scan"`
}

func (s *Server) updateConsent(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return
	}

	var req updateConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	consent := &models.ConsentRecord{
		UserID:         userID,
		DataProcessing: req.DataProcessing,
		BreachLookup:   req.BreachLookup,
		SocialScan:     req.SocialScan,
	}

	if err := s.store.UpsertConsent(r.Context(), consent); err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, consent)
}

// requireConsent loads the caller's consent record and rejects the
// request when the named capability has not been granted.
func (s *Server) requireConsent(w http.ResponseWriter, r *http.Request, userID uuid.UUID, capability string) bool {
	consent, err := s.store.GetConsent(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return false
	}

	granted := false
	if consent != nil {
		switch capability {
		case "data_processing":
			granted = consent.DataProcessing
		case "breach_lookup":
			granted = consent.BreachLookup
		case "social_scan":
			granted = consent.SocialScan
		}
	}

	if !granted {
		respondError(w, http.StatusForbidden, "consent_required",
			"Consent for "+strings.ReplaceAll(capability, "_", " ")+" has not been granted")
		return false
	}
	return true
}

type createScanRequest struct {
	ScanType    models.ScanType `json:"scan_type"`
	TargetEmail string          `json:"target_email"`
	TargetPhone string          `json:"target_phone,omitempty"`
	Platforms   []string        `json:"platforms,omitempty"`
	Priority    int             `json:"priority,omitempty"`
}

func (s *Server) createScan(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return
	}

	var req createScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.TargetEmail == "" || !strings.Contains(req.TargetEmail, "@") {
		respondError(w, http.StatusBadRequest, "validation_error", "a valid target_email is required")
		return
	}

	if req.ScanType == "" {
		req.ScanType = models.ScanTypeFull
	}
	switch req.ScanType {
	case models.ScanTypeFull, models.ScanTypeBreachCheck, models.ScanTypeSocial:
	default:
		respondError(w, http.StatusBadRequest, "validation_error", "unknown scan_type")
		return
	}

	if !s.requireConsent(w, r, userID, "data_processing") {
		return
	}
	if req.ScanType == models.ScanTypeFull || req.ScanType == models.ScanTypeBreachCheck {
		if !s.requireConsent(w, r, userID, "breach_lookup") {
			return
		}
	}
	if req.ScanType == models.ScanTypeFull || req.ScanType == models.ScanTypeSocial {
		if !s.requireConsent(w, r, userID, "social_scan") {
			return
		}
	}

	scanRecord := &models.FootprintScan{
		UserID:      userID,
		ScanType:    req.ScanType,
		TargetEmail: req.TargetEmail,
		TargetPhone: req.TargetPhone,
	}

	if err := s.store.CreateScan(r.Context(), scanRecord); err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	if r.URL.Query().Get("mode") == "async" {
		job := &queue.Job{
			ScanID:    scanRecord.ID,
			UserID:    userID,
			ScanType:  scanRecord.ScanType,
			Platforms: req.Platforms,
			Priority:  req.Priority,
		}
		if err := s.queue.EnqueueScanJob(r.Context(), job); err != nil {
			respondError(w, http.StatusInternalServerError, "queue_error", err.Error())
			return
		}

		respondJSON(w, http.StatusAccepted, map[string]interface{}{
			"scan":   scanRecord,
			"job_id": job.ID,
		})
		return
	}

	if err := s.runner.Run(r.Context(), scanRecord, req.Platforms); err != nil {
		respondError(w, http.StatusInternalServerError, "scan_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, scanRecord)
}

func (s *Server) listScans(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return
	}

	filters := store.ListScanFilters{
		Limit:  100,
		Offset: 0,
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		if limit, err := strconv.Atoi(l); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if offset, err := strconv.Atoi(o); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := models.ScanStatus(status)
		filters.Status = &st
	}
	if scanType := r.URL.Query().Get("scan_type"); scanType != "" {
		st := models.ScanType(scanType)
		filters.ScanType = &st
	}

	scans, total, err := s.store.ListScans(r.Context(), userID, filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	respondJSONWithMeta(w, http.StatusOK, scans, &apiMeta{
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// scanFromRequest parses the scanID path parameter and loads the scan
// for the authenticated user. Writes the error response on failure.
func (s *Server) scanFromRequest(w http.ResponseWriter, r *http.Request) (*models.FootprintScan, uuid.UUID, bool) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return nil, uuid.Nil, false
	}

	scanID, err := uuid.Parse(chi.URLParam(r, "scanID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "Invalid scan ID")
		return nil, uuid.Nil, false
	}

	scanRecord, err := s.store.GetScan(r.Context(), userID, scanID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return nil, uuid.Nil, false
	}
	if scanRecord == nil {
		respondError(w, http.StatusNotFound, "not_found", "Scan not found")
		return nil, uuid.Nil, false
	}

	return scanRecord, userID, true
}

func (s *Server) getScan(w http.ResponseWriter, r *http.Request) {
	scanRecord, _, ok := s.scanFromRequest(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, scanRecord)
}

func (s *Server) deleteScan(w http.ResponseWriter, r *http.Request) {
	scanRecord, userID, ok := s.scanFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteScan(r.Context(), userID, scanRecord.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) checkBreaches(w http.ResponseWriter, r *http.Request) {
	scanRecord, userID, ok := s.scanFromRequest(w, r)
	if !ok {
		return
	}
	if !s.requireConsent(w, r, userID, "breach_lookup") {
		return
	}

	records, err := s.runner.CheckBreaches(r.Context(), scanRecord)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "lookup_error", err.Error())
		return
	}

	scanRecord.BreachCount = len(records)
	if err := s.store.UpdateScanBreachCount(r.Context(), scanRecord.ID, len(records)); err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, records)
}

func (s *Server) listBreaches(w http.ResponseWriter, r *http.Request) {
	scanRecord, _, ok := s.scanFromRequest(w, r)
	if !ok {
		return
	}

	records, err := s.store.ListBreachRecords(r.Context(), scanRecord.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, records)
}

type scanSocialRequest struct {
	Platforms []string `json:"platforms,omitempty"`
}

func (s *Server) scanSocial(w http.ResponseWriter, r *http.Request) {
	scanRecord, userID, ok := s.scanFromRequest(w, r)
	if !ok {
		return
	}
	if !s.requireConsent(w, r, userID, "social_scan") {
		return
	}

	var req scanSocialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	exposures, err := s.runner.ScanSocial(r.Context(), scanRecord, req.Platforms)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "lookup_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, exposures)
}

func (s *Server) listSocialExposures(w http.ResponseWriter, r *http.Request) {
	scanRecord, _, ok := s.scanFromRequest(w, r)
	if !ok {
		return
	}

	exposures, err := s.store.ListSocialExposures(r.Context(), scanRecord.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, exposures)
}

func (s *Server) assessScan(w http.ResponseWriter, r *http.Request) {
	scanRecord, _, ok := s.scanFromRequest(w, r)
	if !ok {
		return
	}

	assessment, err := s.runner.Assess(r.Context(), scanRecord)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "assessment_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, assessment)
}

func (s *Server) generateRecommendations(w http.ResponseWriter, r *http.Request) {
	scanRecord, _, ok := s.scanFromRequest(w, r)
	if !ok {
		return
	}

	plan, err := s.runner.GenerateRecommendations(r.Context(), scanRecord)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "recommendation_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) getDashboardSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return
	}

	summary, err := s.store.GetDashboardSummary(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to get dashboard summary", "error", err)
		respondError(w, http.StatusInternalServerError, "db_error", "Failed to load dashboard")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) getPrivacyReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return
	}

	scanID, err := uuid.Parse(r.URL.Query().Get("scan_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "scan_id is required")
		return
	}

	format := reports.ReportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = reports.FormatPDF
	}

	scanRecord, err := s.store.GetScan(r.Context(), userID, scanID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if scanRecord == nil {
		respondError(w, http.StatusNotFound, "not_found", "Scan not found")
		return
	}

	breaches, err := s.store.ListBreachRecords(r.Context(), scanRecord.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	exposures, err := s.store.ListSocialExposures(r.Context(), scanRecord.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	report, err := s.reportGenerator.PrivacyReport(format, scanRecord, breaches, exposures)
	if err != nil {
		respondError(w, http.StatusBadRequest, "report_error", err.Error())
		return
	}

	w.Header().Set("Content-Type", report.MimeType)
	w.Header().Set("Content-Disposition", "attachment; filename="+report.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	_, _ = w.Write(report.Data)
}
