// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/confreg/confreg/internal/discovery"
	"github.com/confreg/confreg/internal/issue"
	"github.com/confreg/confreg/internal/testutil"
	"github.com/confreg/confreg/pkg/litedit"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantID   issue.Id
		wantCode int
	}{
		{name: "key", err: &litedit.EditError{Op: "add", Key: "providers", Err: litedit.ErrKeyNotFound}, wantID: issue.KeyNotFoundId, wantCode: ExitFailure},
		{name: "unterminated", err: fmt.Errorf("x: %w", litedit.ErrUnterminatedLiteral), wantID: issue.UnterminatedLiteralId, wantCode: ExitFailure},
		{name: "anchor", err: litedit.ErrNoInsertionPoint, wantID: issue.NoInsertionPointId, wantCode: ExitFailure},
		{name: "not a literal", err: fmt.Errorf("%w: %w", litedit.ErrNotLiteral, errors.New("not an array")), wantID: issue.NotLiteralId, wantCode: ExitFailure},
		{name: "write", err: litedit.ErrWriteFailure, wantID: issue.WriteFailureId, wantCode: ExitFailure},
		{name: "backup", err: litedit.ErrBackupPresent, wantID: issue.BackupPresentId, wantCode: ExitBackupPending},
		{name: "package", err: discovery.ErrPackageNotFound, wantID: issue.PackageNotFoundId, wantCode: ExitFailure},
		{name: "other", err: errors.New("boom"), wantCode: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fail("add provider", "config/app.php", tt.err)
			var exitErr *ExitError
			if !errors.As(err, &exitErr) || exitErr.Code != tt.wantCode {
				t.Fatalf("fail() = %v, want ExitError with code %d", err, tt.wantCode)
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("fail() should wrap an ActionableError, got %T", exitErr.Err)
			}
			if ae.Issue != tt.wantID {
				t.Errorf("Issue = %v, want %v", ae.Issue, tt.wantID)
			}
			if !errors.Is(err, tt.err) {
				t.Error("original error lost from chain")
			}
		})
	}
}

func TestClassifyError_KeepsActionable(t *testing.T) {
	t.Parallel()

	orig := issue.NewErrorContext().WithOperation("load configuration").WithIssue(issue.ConfigLoadFailedId).
		Wrap(errors.New("bad")).BuildError()
	if got := classifyError("register", "x", orig); got != orig {
		t.Errorf("classifyError() rewrapped an actionable error: %v", got)
	}
}

func TestClassifyError_WriteFailureSuggestions(t *testing.T) {
	t.Parallel()

	var ae *issue.ActionableError
	if !errors.As(classifyError("add provider", "config/app.php", litedit.ErrWriteFailure), &ae) {
		t.Fatal("classifyError() should return an ActionableError")
	}
	if !ae.HasSuggestions() || len(ae.Suggestions) != 2 {
		t.Fatalf("Suggestions = %q, want two", ae.Suggestions)
	}
	if !strings.Contains(ae.Suggestions[0], "confreg recover --restore") {
		t.Errorf("first suggestion = %q", ae.Suggestions[0])
	}
}

func TestRenderActionableError(t *testing.T) {
	t.Parallel()

	ae := issue.NewErrorContext().
		WithOperation("add provider").
		WithResource("config/app.php").
		WithSuggestion("Check the key").
		Wrap(litedit.ErrKeyNotFound).
		Build()

	var buf bytes.Buffer
	renderActionableError(&buf, ae, false)
	out := buf.String()
	for _, want := range []string{"failed to add provider: config/app.php: key not found", "Check the key"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Error chain") {
		t.Error("non-verbose output should not include the error chain")
	}
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	fs := testutil.MemFs(t, map[string]string{
		"/proj/config/app.php": "<?php return ['providers' => []];",
		"/proj/confreg.cue":    `style: default_quote: "\""`,
	})

	t.Run("defaults target", func(t *testing.T) {
		t.Parallel()

		app := NewApp(Dependencies{Fs: fs, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
		app.flags.dir = "/proj"
		s, err := app.newSession(context.Background(), false)
		if err != nil {
			t.Fatalf("newSession() error = %v", err)
		}
		if s.target != "/proj/config/app.php" {
			t.Errorf("target = %q", s.target)
		}
		if s.cfg.Style.Quote() != '"' {
			t.Errorf("local confreg.cue not applied: quote = %q", s.cfg.Style.Quote())
		}
		if err := s.requireNoBackup(); err != nil {
			t.Errorf("requireNoBackup() = %v", err)
		}
	})

	t.Run("missing target", func(t *testing.T) {
		t.Parallel()

		app := NewApp(Dependencies{Fs: fs, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
		app.flags.dir = "/proj"
		app.flags.file = "config/other.php"
		_, err := app.newSession(context.Background(), false)
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || ae.Issue != issue.FileNotFoundId {
			t.Errorf("newSession() error = %v, want FileNotFoundId", err)
		}
	})
}

func TestRequireNoBackup(t *testing.T) {
	t.Parallel()

	fs := testutil.MemFs(t, map[string]string{
		"/proj/config/app.php":     "<?php return ['providers' => []];",
		"/proj/config/app.bak.php": "<?php return ['providers' => []];",
	})
	app := NewApp(Dependencies{Fs: fs, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	app.flags.dir = "/proj"
	s, err := app.newSession(context.Background(), false)
	if err != nil {
		t.Fatalf("newSession() error = %v", err)
	}
	if err := s.requireNoBackup(); !errors.Is(err, litedit.ErrBackupPresent) {
		t.Errorf("requireNoBackup() = %v, want ErrBackupPresent", err)
	}
}
