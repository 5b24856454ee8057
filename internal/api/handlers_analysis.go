package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/privasee/footprint/internal/models"
	"github.com/privasee/footprint/internal/risk"
)

type analyzeRequest struct {
	Text string `json:"text"`
}

// maxAnalyzeTextLen bounds the input so a single request cannot stuff
// megabytes of text through the NER pipeline.
const maxAnalyzeTextLen = 50000

func (s *Server) analyzeText(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "text is required")
		return
	}
	if len(req.Text) > maxAnalyzeTextLen {
		respondError(w, http.StatusBadRequest, "validation_error", "text exceeds maximum length")
		return
	}

	if !s.requireConsent(w, r, userID, "data_processing") {
		return
	}

	entities, source := s.analyzer.Analyze(r.Context(), req.Text)
	assessment := risk.AssessEntities(entities)
	recommendations := risk.EntityRecommendations(assessment)

	analysis := &models.TextAnalysis{
		UserID:          userID,
		InputText:       req.Text,
		Entities:        models.JSONB{"entities": entities},
		Categories:      models.StringArray(assessment.Categories),
		RiskScore:       assessment.RiskScore,
		RiskLevel:       assessment.OverallRisk,
		PrivacyScore:    assessment.PrivacyScore,
		Recommendations: models.JSONB{"recommendations": recommendations},
		Source:          source,
	}

	if err := s.store.CreateTextAnalysis(r.Context(), analysis); err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"analysis_id":     analysis.ID,
		"entities":        entities,
		"assessment":      assessment,
		"recommendations": recommendations,
		"source":          source,
	})
}

func (s *Server) listAnalyses(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return
	}

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	analyses, total, err := s.store.ListTextAnalyses(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	respondJSONWithMeta(w, http.StatusOK, analyses, &apiMeta{
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return
	}

	analysisID, err := uuid.Parse(chi.URLParam(r, "analysisID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "Invalid analysis ID")
		return
	}

	analysis, err := s.store.GetTextAnalysis(r.Context(), userID, analysisID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if analysis == nil {
		respondError(w, http.StatusNotFound, "not_found", "Analysis not found")
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}
