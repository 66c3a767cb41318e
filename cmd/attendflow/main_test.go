package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/attendflow/attendflow/internal/cache"
	"github.com/attendflow/attendflow/internal/config"
	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/storage"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	f, err := setupLogging(dir, config.LogConfig{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("setupLogging() error = %v", err)
	}
	slog.Debug("hello", "n", 1)
	f.Close()

	data, err := os.ReadFile(filepath.Join(dir, "logs", logFileName))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(data) == 0 || data[0] != '{' {
		t.Errorf("log = %q; want a JSON record", data)
	}
}

func TestPeriodFlags(t *testing.T) {
	now := time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		args      []string
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{[]string{"-from", "2026-01-01", "-to", "2026-01-31"}, "2026-01-01", "2026-01-31", false},
		{[]string{"-range", "month"}, "2026-02-01", "2026-02-28", false},
		{[]string{"-range", "30d"}, "2026-01-11", "2026-02-10", false},
		{[]string{"-range", "today"}, "2026-02-10", "2026-02-10", false},
		{[]string{"-range", "year"}, "", "", true},
		{nil, "", "", false},
	}
	for _, tt := range tests {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		var pf periodFlags
		pf.register(fs)
		if err := fs.Parse(tt.args); err != nil {
			t.Fatalf("Parse(%v) error = %v", tt.args, err)
		}
		got, err := pf.dates(now)
		if (err != nil) != tt.wantErr {
			t.Errorf("dates(%v) error = %v; wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if got.StartDate != tt.wantStart || got.EndDate != tt.wantEnd {
			t.Errorf("dates(%v) = %+v; want %s..%s", tt.args, got, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestEmployeeFlagsSalaryOnlyWhenSet(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var ef employeeFlags
	ef.register(fs)
	if err := fs.Parse([]string{"-name", "An", "-skills", "go, sql,,"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if ef.salaryPtr(fs) != nil {
		t.Error("salaryPtr() should be nil when -salary is not given")
	}
	if got := ef.skillList(); len(got) != 2 || got[0] != "go" || got[1] != "sql" {
		t.Errorf("skillList() = %v; want [go sql]", got)
	}

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	ef = employeeFlags{}
	ef.register(fs)
	if err := fs.Parse([]string{"-salary", "0"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p := ef.salaryPtr(fs); p == nil || *p != 0 {
		t.Errorf("salaryPtr() = %v; want pointer to 0", p)
	}
}

type readOnlyStorage struct {
	*storage.Memory
}

func (readOnlyStorage) Set(context.Context, string, string) error {
	return errors.New("read-only file system")
}

func TestSaveSearchStateLogsWriteFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	c := cache.New(readOnlyStorage{storage.NewMemory()})

	saveSearchState(context.Background(), c, logger, domain.EmployeeFilter{FullName: "Lan"}, domain.Pagination{Page: 2})

	out := buf.String()
	for _, want := range []string{"save employee filters", "save employee pagination", "level=WARN", "read-only file system"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSaveSearchState(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	c := cache.New(storage.NewMemory())

	saveSearchState(ctx, c, slog.New(slog.NewTextHandler(&buf, nil)), domain.EmployeeFilter{FullName: "Lan"}, domain.Pagination{Page: 2})

	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %s", buf.String())
	}
	if f, ok := c.EmployeeFilters(ctx); !ok || f.FullName != "Lan" {
		t.Errorf("EmployeeFilters() = %+v, %v; want FullName Lan", f, ok)
	}
	if p, ok := c.EmployeePagination(ctx); !ok || p.Page != 2 {
		t.Errorf("EmployeePagination() = %+v, %v; want page 2", p, ok)
	}
}
