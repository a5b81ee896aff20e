package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raaihank/data-laundry/internal/analysis"
	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/etl"
	"github.com/raaihank/data-laundry/internal/store"
)

const sampleCSV = "이름,연락처,이메일\n 홍길동 ,01012345678,hong@example.com\n김철수,010-9876-5432,a@b\n"

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "고객.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"formatMobile", " cleanEmail ", ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !opts.FormatMobile || !opts.CleanEmail || opts.MaskName {
		t.Errorf("Expected formatMobile and cleanEmail, got %v", opts.Enabled())
	}

	if _, err := parseOptions([]string{"formatEverything"}); !errors.Is(err, cleaning.ErrUnknownOption) {
		t.Errorf("Expected ErrUnknownOption, got %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		wantErr bool
		want    map[string]string
	}{
		{"date with separator", []string{"가입일=date:."}, false, map[string]string{"가입일": "date:."}},
		{"none dropped", []string{"메모=", "연락처=mobile"}, false, map[string]string{"연락처": "mobile"}},
		{"missing equals", []string{"가입일"}, true, nil},
		{"unknown tag", []string{"가입일=calendar"}, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFormats(tt.pairs)
			if tt.wantErr {
				if !errors.Is(err, cleaning.ErrUnknownFormat) {
					t.Errorf("Expected ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d formats, got %v", len(tt.want), got)
			}
			for column, tag := range tt.want {
				text, _ := got[column].MarshalText()
				if string(text) != tag {
					t.Errorf("%s: Expected %s, got %s", column, tag, text)
				}
			}
		})
	}
}

func TestDefaultOutput(t *testing.T) {
	got := defaultOutput(filepath.Join("data", "고객.xlsx"))
	if got != filepath.Join("data", "cleaned_고객.xlsx") {
		t.Errorf("Expected cleaned_ prefix in same dir, got %s", got)
	}
}

func TestCleanCommand(t *testing.T) {
	input := writeSample(t)
	output := filepath.Join(filepath.Dir(input), "out.csv")

	cmd := newCleanCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{input, "-o", output, "--options", "removeWhitespace,formatMobile"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ds, err := etl.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Rows[0]["이름"] != "홍길동" || ds.Rows[0]["연락처"] != "010-1234-5678" {
		t.Errorf("Expected cleaned first row, got %v", ds.Rows[0])
	}
	if !strings.Contains(stderr.String(), "100%") {
		t.Errorf("Expected progress output, got %q", stderr.String())
	}
	if !strings.Contains(stdout.String(), "changed cells:  2") {
		t.Errorf("Expected summary, got %q", stdout.String())
	}
}

func TestCleanCommandErrors(t *testing.T) {
	input := writeSample(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{filepath.Join(t.TempDir(), "none.csv")}},
		{"unknown option", []string{input, "--options", "nope"}},
		{"unknown preset", []string{input, "--preset", "sys-missing"}},
		{"bad output extension", []string{input, "-o", filepath.Join(t.TempDir(), "out.xls")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newCleanCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestBuildIssuesReport(t *testing.T) {
	report, err := buildIssuesReport(writeSample(t), cleaning.Options{}, analysis.Limits{"이름": 2})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Rows != 2 || len(report.Columns) != 3 {
		t.Errorf("Expected 2 rows and 3 columns, got %d and %v", report.Rows, report.Columns)
	}
	if len(report.Issues) == 0 {
		t.Error("Expected issues for mixed phones and a bad email")
	}
	if report.ColumnLengths["연락처"] != 13 {
		t.Errorf("Expected 13, got %d", report.ColumnLengths["연락처"])
	}
}

func TestPrintTables(t *testing.T) {
	var buf bytes.Buffer
	printPresets(&buf, store.SystemPresets())
	if !strings.Contains(buf.String(), "sys-privacy") {
		t.Errorf("Expected system presets listed, got %q", buf.String())
	}

	buf.Reset()
	jobs := []store.JobRecord{*store.NewJobRecord("", "a.csv", 10, 2, 95, 1500*time.Millisecond, errors.New("boom"))}
	printJobs(&buf, jobs)
	if !strings.Contains(buf.String(), "failed: boom") || !strings.Contains(buf.String(), "1.5s") {
		t.Errorf("Expected job row, got %q", buf.String())
	}
}
