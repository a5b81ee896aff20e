package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/config"
	"github.com/raaihank/data-laundry/internal/etl"
	"github.com/raaihank/data-laundry/internal/logger"
	"github.com/raaihank/data-laundry/internal/store"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.GetDefaults()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := New(cfg, logger.Nop(), Deps{})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", jsonContentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndInfo(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected request ID header")
	}

	rec = doJSON(t, s, http.MethodGet, "/info", nil)
	var info InfoResponse
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Name != "data-laundry" || len(info.FormatTags) == 0 || len(info.PrivacyRules) == 0 || info.CacheEnabled || info.DatabaseEnabled {
		t.Errorf("Unexpected info: %+v", info)
	}
}

func TestHandleClean(t *testing.T) {
	s := newTestServer(t, nil)
	rows := []cleaning.Row{
		{"이름": " 홍길동 ", "연락처": "01012345678"},
		{"이름": "김철수", "연락처": "010-9876-5432"},
	}

	t.Run("cleans rows", func(t *testing.T) {
		body := CleanRequest{
			Request: cleaning.Request{Options: cleaning.Options{RemoveWhitespace: true, FormatMobile: true}},
			Rows:    rows,
			Columns: []string{"이름", "연락처"},
		}
		rec := doJSON(t, s, http.MethodPost, "/api/v1/clean", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
		}

		var resp CleanResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.JobID == "" || resp.Cached {
			t.Errorf("Expected fresh job, got %+v", resp)
		}
		if resp.Rows[0]["이름"] != "홍길동" || resp.Rows[0]["연락처"] != "010-1234-5678" {
			t.Errorf("Expected cleaned first row, got %v", resp.Rows[0])
		}
		if resp.Stats.TotalRows != 2 || resp.Stats.ChangedCells != 2 {
			t.Errorf("Expected 2 rows with 2 changes, got %+v", resp.Stats)
		}
	})

	t.Run("system preset", func(t *testing.T) {
		body := CleanRequest{Rows: rows, PresetID: "sys-standard"}
		rec := doJSON(t, s, http.MethodPost, "/api/v1/clean", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
		}
		var resp CleanResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Rows[0]["연락처"] != "010-1234-5678" {
			t.Errorf("Expected preset options applied, got %v", resp.Rows[0])
		}
	})

	tests := []struct {
		name     string
		body     any
		expected int
	}{
		{"nil rows", `{"options":{}}`, http.StatusBadRequest},
		{"malformed", `{"rows":`, http.StatusBadRequest},
		{"empty rows", `{"rows":[]}`, http.StatusUnprocessableEntity},
		{"unknown preset", CleanRequest{Rows: rows, PresetID: "missing"}, http.StatusNotFound},
		{"bad format tag", `{"rows":[{"a":"1"}],"columnFormats":{"a":"bogus"}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/v1/clean", tt.body)
			if rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d: %s", tt.expected, rec.Code, rec.Body)
			}
		})
	}
}

func TestHandleIssues(t *testing.T) {
	s := newTestServer(t, nil)
	body := IssuesRequest{
		Rows: []cleaning.Row{
			{"연락처": "01012345678", "이메일": "a@b"},
			{"연락처": "010-1234-5678", "이메일": "user@example.com"},
		},
		Options: cleaning.Options{},
	}

	rec := doJSON(t, s, http.MethodPost, "/api/v1/issues", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp IssuesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Issues) == 0 {
		t.Error("Expected issues for unformatted phone and invalid email")
	}
	if resp.ColumnLengths["연락처"] != 13 {
		t.Errorf("Expected max length 13, got %d", resp.ColumnLengths["연락처"])
	}
	if len(resp.HeaderSuggestions) != 2 {
		t.Errorf("Expected suggestions per column, got %v", resp.HeaderSuggestions)
	}
	if resp.PersonalData["연락처"]["mobile"] != 2 || resp.PersonalData["이메일"]["email"] != 1 {
		t.Errorf("Expected personal data profile, got %v", resp.PersonalData)
	}
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/clean", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleFileClean(t *testing.T) {
	s := newTestServer(t, nil)
	csv := "이름,연락처\n홍길동,01012345678\n김철수,010-9876-5432\n"

	t.Run("csv to csv", func(t *testing.T) {
		req := multipartUpload(t, "고객.csv", csv, map[string]string{"options": `{"formatMobile":true}`})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
		}
		if rec.Header().Get(headerJobID) == "" || rec.Header().Get(headerChanged) != "1" {
			t.Errorf("Expected job headers, got %v", rec.Header())
		}
		if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
			t.Errorf("Expected attachment, got %s", rec.Header().Get("Content-Disposition"))
		}
		ds, err := etl.Decode(rec.Body, etl.FormatCSV)
		if err != nil {
			t.Fatal(err)
		}
		if ds.Rows[0]["연락처"] != "010-1234-5678" {
			t.Errorf("Expected formatted phone, got %v", ds.Rows[0])
		}
	})

	t.Run("csv to xlsx", func(t *testing.T) {
		req := multipartUpload(t, "a.csv", csv, map[string]string{"output": "xlsx", "options": `{"formatMobile":true,"highlightChanges":true}`})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
		}
		if rec.Header().Get("Content-Type") != contentTypes[etl.FormatXLSX] {
			t.Errorf("Expected xlsx content type, got %s", rec.Header().Get("Content-Type"))
		}
	})

	tests := []struct {
		name     string
		filename string
		fields   map[string]string
		expected int
	}{
		{"unsupported input", "a.xls", nil, http.StatusUnsupportedMediaType},
		{"unsupported output", "a.csv", map[string]string{"output": "pdf"}, http.StatusUnsupportedMediaType},
		{"bad options", "a.csv", map[string]string{"options": "{"}, http.StatusBadRequest},
		{"bad format tag", "a.csv", map[string]string{"columnFormats": `{"연락처":"bogus"}`}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, multipartUpload(t, tt.filename, csv, tt.fields))
			if rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d: %s", tt.expected, rec.Code, rec.Body)
			}
		})
	}

	t.Run("upload limit", func(t *testing.T) {
		small := newTestServer(t, func(c *config.Config) { c.Server.MaxUploadSize = 16 })
		rec := httptest.NewRecorder()
		small.Handler().ServeHTTP(rec, multipartUpload(t, "a.csv", csv, nil))
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected 413, got %d", rec.Code)
		}
	})
}

func TestPresetRoutesWithoutStore(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/presets", nil)
	var presets []store.Preset
	if err := json.NewDecoder(rec.Body).Decode(&presets); err != nil {
		t.Fatal(err)
	}
	if len(presets) != len(store.SystemPresets()) {
		t.Errorf("Expected system presets, got %d", len(presets))
	}

	tests := []struct {
		method, path string
		body         any
		expected     int
	}{
		{http.MethodPost, "/api/v1/presets", store.Preset{Name: "x"}, http.StatusServiceUnavailable},
		{http.MethodDelete, "/api/v1/presets/sys-standard", nil, http.StatusForbidden},
		{http.MethodDelete, "/api/v1/presets/user-1", nil, http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/presets/export", nil, http.StatusServiceUnavailable},
		{http.MethodPost, "/api/v1/presets/import", "[]", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/jobs", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := doJSON(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d: %s", tt.expected, rec.Code, rec.Body)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}
	})

	rec := doJSON(t, s, http.MethodGet, "/api/v1/jobs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected first request allowed, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("Expected 0 remaining, got %q", got)
	}
	if rec := doJSON(t, s, http.MethodGet, "/api/v1/jobs", nil); rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Errorf("Expected health outside the limit, got %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t, nil)

	body := CleanRequest{
		Request: cleaning.Request{Options: cleaning.Options{RemoveWhitespace: true}},
		Rows:    []cleaning.Row{{"이름": " 홍길동 "}},
	}
	if rec := doJSON(t, s, http.MethodPost, "/api/v1/clean", body); rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var stats StatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Pipeline == nil || stats.Pipeline.RecordsCleaned != 1 {
		t.Errorf("Expected 1 cleaned record, got %+v", stats.Pipeline)
	}
	if stats.Cache != nil {
		t.Errorf("Expected no cache stats without a cache, got %+v", stats.Cache)
	}

	if rec := doJSON(t, s, http.MethodDelete, "/api/v1/cache", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a cache, got %d", rec.Code)
	}
}

func TestReload(t *testing.T) {
	s := newTestServer(t, nil)

	cfg := config.GetDefaults()
	cfg.Privacy.Detectors = []string{"email"}
	if err := s.Reload(cfg); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := s.detector.GetEnabledRules(); len(got) != 1 || got[0] != "email" {
		t.Errorf("Expected [email], got %v", got)
	}

	cfg.Privacy.Detectors = []string{"bogus"}
	if err := s.Reload(cfg); err == nil {
		t.Error("Expected error for unknown detector")
	}
}

func TestResolveRequest(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	base, err := s.resolveRequest(ctx, "sys-privacy", cleaning.Request{})
	if err != nil {
		t.Fatal(err)
	}
	if !base.Options.MaskName || base.Prompt == "" {
		t.Errorf("Expected preset request, got %+v", base)
	}

	date, _ := cleaning.ParseColumnFormat("date")
	override, err := s.resolveRequest(ctx, "sys-privacy", cleaning.Request{
		Prompt:        "이메일 가려줘",
		Options:       cleaning.Options{MaskEmail: true},
		Locked:        []string{"id"},
		ColumnFormats: map[string]cleaning.ColumnFormat{"가입일": date},
	})
	if err != nil {
		t.Fatal(err)
	}
	if override.Prompt != "이메일 가려줘" || override.Options.MaskName || !override.Options.MaskEmail {
		t.Errorf("Expected request fields to win, got %+v", override)
	}
	if len(override.Locked) != 1 || override.ColumnFormats["가입일"] != date {
		t.Errorf("Expected locks and formats kept, got %+v", override)
	}

	if _, err := s.resolveRequest(ctx, "nope", cleaning.Request{}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{cleaning.ErrNilRows, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", store.ErrNotFound), http.StatusNotFound},
		{store.ErrSystemPreset, http.StatusForbidden},
		{etl.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{etl.ErrEmptyDataset, http.StatusUnprocessableEntity},
		{etl.ErrTooManyRows, http.StatusRequestEntityTooLarge},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.expected {
			t.Errorf("%v: Expected %d, got %d", tt.err, tt.expected, got)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := getClientIP(req); got != "192.0.2.1" {
		t.Errorf("Expected 192.0.2.1, got %s", got)
	}
	req.Header.Set("X-Real-IP", "10.1.1.1")
	if got := getClientIP(req); got != "10.1.1.1" {
		t.Errorf("Expected 10.1.1.1, got %s", got)
	}
}
