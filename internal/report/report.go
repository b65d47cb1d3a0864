// Package report collects audit results into a JSON document suitable for CI artifacts.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Finding codes.
const (
	CodeNaming = "naming"
	CodeCast   = "cast"
	CodeParse  = "parse"
)

// Severities, highest first.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

type Finding struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Message  string `json:"message"`
	Name     string `json:"name,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
}

type FileMetric struct {
	Path       string `json:"path"`
	Status     string `json:"status"` // ok, findings or failed
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	DurationMS int64  `json:"duration_ms"`
	Findings   int    `json:"findings"`
	Error      string `json:"error,omitempty"`
}

// Summary mirrors the totals the CLI logs when an audit finishes.
type Summary struct {
	FileCount   int `json:"file_count"`
	FailedFiles int `json:"failed_files"`
	Violations  int `json:"violations"`
	Casts       int `json:"casts"`
}

// Report is safe for concurrent use. A nil *Report ignores every call.
type Report struct {
	Version     string       `json:"version"`
	Policy      string       `json:"policy"`
	GeneratedAt string       `json:"generated_at"`
	Files       []FileMetric `json:"files"`
	Findings    []Finding    `json:"findings"`
	Summary     Summary      `json:"summary"`

	mu sync.Mutex
}

// FileHandle times the audit of one file.
type FileHandle struct {
	path    string
	started time.Time
}

func New(policy string) *Report {
	if strings.TrimSpace(policy) == "" {
		policy = "default"
	}
	return &Report{
		Version:     "v1",
		Policy:      policy,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Files:       []FileMetric{},
		Findings:    []Finding{},
	}
}

func (r *Report) BeginFile(path string) FileHandle {
	return FileHandle{path: path, started: time.Now().UTC()}
}

// EndFile records the outcome of a file started with BeginFile.
func (r *Report) EndFile(h FileHandle, findings int, err error) {
	if r == nil || h.path == "" {
		return
	}
	finished := time.Now().UTC()
	m := FileMetric{
		Path:       h.path,
		Status:     "ok",
		StartedAt:  h.started.Format(time.RFC3339Nano),
		FinishedAt: finished.Format(time.RFC3339Nano),
		DurationMS: finished.Sub(h.started).Milliseconds(),
		Findings:   findings,
	}
	switch {
	case err != nil:
		m.Status = "failed"
		m.Error = err.Error()
	case findings > 0:
		m.Status = "findings"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.Files = append(r.Files, m)
}

func (r *Report) Add(f Finding) {
	if r == nil || f.Code == "" || f.File == "" {
		return
	}
	f.Severity = strings.ToLower(strings.TrimSpace(f.Severity))
	if f.Severity == "" {
		f.Severity = SeverityWarning
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.Findings = append(r.Findings, f)
}

// Finalize orders files by path and findings by location, then recomputes the summary.
func (r *Report) Finalize() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	s := Summary{FileCount: len(r.Files)}
	for _, f := range r.Files {
		if f.Status == "failed" {
			s.FailedFiles++
		}
	}
	for _, f := range r.Findings {
		switch f.Code {
		case CodeNaming:
			s.Violations++
		case CodeCast:
			s.Casts++
		}
	}
	r.Summary = s
}

// Save finalizes the report and writes it to path as indented JSON.
func (r *Report) Save(path string) error {
	if r == nil {
		return nil
	}
	r.Finalize()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	r.mu.Lock()
	data, err := json.MarshalIndent(r, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}
