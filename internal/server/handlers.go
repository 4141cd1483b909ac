package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/hyperjump/fintax/internal/models"
)

const landingFallback = "Tax service - use /chat or /query endpoints."

//go:embed templates/index.html
var templatesFS embed.FS

// loadLanding parses the override at path, or the embedded page when path is empty.
func loadLanding(path string) (*template.Template, error) {
	if path != "" {
		return template.ParseFiles(path)
	}
	return template.ParseFS(templatesFS, "templates/index.html")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.landing != nil {
		var buf bytes.Buffer
		err := s.landing.Execute(&buf, nil)
		if err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(buf.Bytes())
			return
		}
		ctxzap.Extract(r.Context()).Warn("render landing page failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(landingFallback))
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}
	logger := ctxzap.Extract(r.Context())
	logger.Debug("query request", zap.String("question", req.Question))

	resp, err := s.service.Query(r.Context(), req.Question)
	if err != nil {
		logger.Error("query failed", zap.Error(err))
		s.respondServiceError(w, err)
		return
	}
	logger.Info("query answered", zap.Int("chunks", len(resp.TopChunks)))
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}
	logger := ctxzap.Extract(r.Context())
	logger.Debug("chat request", zap.String("question", req.Question))

	resp, err := s.service.Chat(r.Context(), req.Question)
	if err != nil {
		logger.Error("chat failed", zap.Error(err))
		s.respondServiceError(w, err)
		return
	}
	logger.Info("chat answered", zap.Int("sources", len(resp.Sources)))
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.service.Health(r.Context())
	status := http.StatusOK
	if report.Status != models.StatusHealthy {
		status = http.StatusInternalServerError
	}
	s.respondJSON(w, status, report)
}

// decodeQuestion parses and validates the request body, writing a 400 on failure.
func (s *Server) decodeQuestion(w http.ResponseWriter, r *http.Request) (*models.QuestionRequest, bool) {
	var req models.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &req, true
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrEmptyQuestion) {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
