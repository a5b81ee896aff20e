package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/analysis"
	"github.com/raaihank/data-laundry/internal/cache"
	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/etl"
	"github.com/raaihank/data-laundry/internal/logger"
	"github.com/raaihank/data-laundry/internal/store"
	"github.com/raaihank/data-laundry/internal/websocket"
)

const (
	maxJSONBody      = 64 << 20
	multipartMemory  = 32 << 20
	apiJobSource     = "api"
	cleanedPrefix    = "cleaned_"
	headerJobID      = "X-Job-ID"
	headerQuality    = "X-Quality-Score"
	headerChanged    = "X-Changed-Cells"
	jsonContentType  = "application/json"
	defaultJobsLimit = 50
)

var contentTypes = map[etl.FileFormat]string{
	etl.FormatCSV:     "text/csv; charset=utf-8",
	etl.FormatXLSX:    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	etl.FormatParquet: "application/vnd.apache.parquet",
	etl.FormatJSONL:   "application/x-ndjson",
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Name:            "data-laundry",
		Version:         Version,
		PrivacyEnabled:  s.config.Privacy.Enabled,
		PrivacyRules:    s.detector.GetEnabledRules(),
		CacheEnabled:    s.cache != nil,
		DatabaseEnabled: s.store != nil,
		Workers:         s.config.Engine.Workers,
		FormatTags:      cleaning.FormatTags(),
		Performance:     analysis.EstimatePerformance(float64(s.config.Engine.MemoryGB), 0),
	})
}

// handleClean cleans a JSON table
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CleanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Rows == nil {
		writeError(w, http.StatusBadRequest, cleaning.ErrNilRows.Error())
		return
	}

	cleanReq, err := s.resolveRequest(ctx, req.PresetID, req.Request)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	columns := req.Columns
	if len(columns) == 0 {
		columns = cleaning.Columns(req.Rows)
	}

	jobID := uuid.NewString()
	log := s.logger.WithRequestID(getRequestID(ctx)).WithJobID(jobID)

	var key string
	if s.cache.Cacheable(len(req.Rows)) {
		if key, err = cache.Key(cleanReq, columns, req.Rows, req.MaxLengths); err != nil {
			log.Warn("Failed to build cache key", zap.Error(err))
		} else if cached, ok := s.cache.Get(ctx, key); ok {
			writeJSON(w, http.StatusOK, CleanResponse{
				JobID:        jobID,
				Columns:      cached.Columns,
				Rows:         cached.Rows,
				IssuesBefore: cached.IssuesBefore,
				Issues:       cached.Issues,
				Stats:        cached.Stats,
				Formats:      cached.Formats,
				Cached:       true,
			})
			return
		}
	}

	start := time.Now()
	job := etl.Job{ID: jobID, Input: apiJobSource, Request: cleanReq, Limits: req.MaxLengths}
	result, err := s.pipeline.Clean(ctx, job, &etl.Dataset{Columns: columns, Rows: req.Rows}, s.wsHub.Progress)
	s.finishJob(ctx, log, jobID, apiJobSource, len(req.Rows), result, time.Since(start), err)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	if key != "" {
		entry := &cache.CachedResult{
			Columns:      result.Columns,
			Rows:         result.Rows,
			IssuesBefore: result.IssuesBefore,
			Issues:       result.Issues,
			Stats:        result.Stats,
			Formats:      result.Formats,
		}
		if err := s.cache.Set(ctx, key, entry); err != nil {
			log.Warn("Failed to cache result", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, newCleanResponse(result))
}

// handleIssues diagnoses a table without changing it
func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	var req IssuesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Rows == nil {
		writeError(w, http.StatusBadRequest, cleaning.ErrNilRows.Error())
		return
	}

	columns := req.Columns
	if len(columns) == 0 {
		columns = cleaning.Columns(req.Rows)
	}

	formats := make(map[string]string)
	for column, f := range analysis.RecommendFormats(req.Rows, columns) {
		formats[column] = f.String()
	}
	headers := make(map[string][]string, len(columns))
	for _, column := range columns {
		headers[column] = analysis.HeaderRecommendations(req.Rows, column)
	}

	issues := analysis.DetectIssues(req.Rows, columns, req.MaxLengths, req.Options)
	if issues == nil {
		issues = []analysis.Issue{}
	}

	writeJSON(w, http.StatusOK, IssuesResponse{
		Issues:            issues,
		Formats:           formats,
		ColumnLengths:     analysis.ColumnLengths(req.Rows, columns),
		HeaderSuggestions: headers,
		DateColumns:       analysis.DateCandidateColumns(req.Rows, columns),
		PersonalData:      s.profileColumns(req.Rows, columns),
	})
}

// profileColumns reports which columns hold personal data worth masking
func (s *Server) profileColumns(rows []cleaning.Row, columns []string) map[string]map[string]int {
	var out map[string]map[string]int
	values := make([]string, len(rows))
	for _, column := range columns {
		for i, row := range rows {
			values[i] = cleaning.Stringify(row[column])
		}
		if profile := s.detector.Profile(values); profile != nil {
			if out == nil {
				out = make(map[string]map[string]int)
			}
			out[column] = profile
		}
	}
	return out
}

// handleFileClean cleans an uploaded file and returns the cleaned file.
// Form fields: file, prompt, options (JSON), columnFormats (JSON), lockedColumns
// (comma separated), presetId, maxLengths (JSON), output (target extension).
func (s *Server) handleFileClean(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	inFormat, err := etl.DetectFileFormat(header.Filename)
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	outFormat := inFormat
	if out := r.FormValue("output"); out != "" {
		if outFormat, err = etl.DetectFileFormat("out." + strings.TrimPrefix(out, ".")); err != nil {
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		}
	}

	cleanReq, limits, err := formRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cleanReq, err = s.resolveRequest(ctx, r.FormValue("presetId"), cleanReq); err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	dir, err := os.MkdirTemp("", "laundry-*")
	if err != nil {
		s.logger.Error("Failed to create work directory", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input."+string(inFormat))
	if err := saveUpload(input, file); err != nil {
		s.logger.Error("Failed to store upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	jobID := uuid.NewString()
	log := s.logger.WithRequestID(getRequestID(ctx)).WithJobID(jobID)
	job := etl.Job{
		ID:      jobID,
		Input:   input,
		Output:  filepath.Join(dir, "output."+string(outFormat)),
		Request: cleanReq,
		Limits:  limits,
	}

	start := time.Now()
	result, err := s.pipeline.Run(ctx, job, s.wsHub.Progress)
	s.finishJob(ctx, log, jobID, header.Filename, resultRows(result), result, time.Since(start), err)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	out, err := os.Open(result.Output)
	if err != nil {
		log.Error("Failed to open cleaned file", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer out.Close()

	base := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	w.Header().Set("Content-Type", contentTypes[outFormat])
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": cleanedPrefix + base + "." + string(outFormat),
	}))
	w.Header().Set(headerJobID, jobID)
	w.Header().Set(headerQuality, fmt.Sprint(result.Stats.QualityScore))
	w.Header().Set(headerChanged, fmt.Sprint(result.Stats.ChangedCells))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, out); err != nil {
		log.Warn("Failed to stream cleaned file", zap.Error(err))
	}
}

// formRequest reads the cleaning request fields of a multipart form
func formRequest(r *http.Request) (cleaning.Request, analysis.Limits, error) {
	req := cleaning.Request{Prompt: r.FormValue("prompt")}

	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Options); err != nil {
			return req, nil, fmt.Errorf("invalid options: %w", err)
		}
	}
	if raw := r.FormValue("columnFormats"); raw != "" {
		var tags map[string]string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return req, nil, fmt.Errorf("invalid columnFormats: %w", err)
		}
		formats, err := cleaning.ParseColumnFormats(tags)
		if err != nil {
			return req, nil, err
		}
		req.ColumnFormats = formats
	}
	if raw := r.FormValue("lockedColumns"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				req.Locked = append(req.Locked, c)
			}
		}
	}

	var limits analysis.Limits
	if raw := r.FormValue("maxLengths"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &limits); err != nil {
			return req, nil, fmt.Errorf("invalid maxLengths: %w", err)
		}
	}
	return req, limits, nil
}

// resolveRequest layers a request over the named preset
func (s *Server) resolveRequest(ctx context.Context, presetID string, req cleaning.Request) (cleaning.Request, error) {
	if presetID == "" {
		return req, nil
	}
	preset, err := s.lookupPreset(ctx, presetID)
	if err != nil {
		return req, err
	}
	return preset.Apply(req), nil
}

// finishJob logs, records and broadcasts the outcome of a job
func (s *Server) finishJob(ctx context.Context, log *logger.Logger, jobID, source string, rows int, result *etl.Result, duration time.Duration, err error) {
	var changed, quality int
	if result != nil {
		changed = result.Stats.ChangedCells
		quality = result.Stats.QualityScore
	}
	log.LogJob(source, rows, changed, duration, err)

	record := store.NewJobRecord(jobID, source, rows, changed, quality, duration, err)
	if s.store != nil {
		// Record with a fresh context so a cancelled request still lands in history
		recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.store.RecordJob(recordCtx, record); err != nil {
			log.Warn("Failed to record job", zap.Error(err))
		}
	}

	s.wsHub.JobFinished(websocket.JobEvent{
		JobID:        jobID,
		Source:       source,
		Rows:         rows,
		ChangedCells: changed,
		QualityScore: quality,
		DurationMS:   record.DurationMS,
		Error:        record.Error,
	})
}

func resultRows(result *etl.Result) int {
	if result == nil {
		return 0
	}
	return result.Stats.TotalRows
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, cleaning.ErrNilRows),
		errors.Is(err, cleaning.ErrUnknownFormat),
		errors.Is(err, cleaning.ErrUnknownOption),
		errors.Is(err, store.ErrInvalidPreset):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrSystemPreset):
		return http.StatusForbidden
	case errors.Is(err, etl.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, etl.ErrEmptyDataset):
		return http.StatusUnprocessableEntity
	case errors.Is(err, etl.ErrTooManyRows):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
