// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestCatalog(t *testing.T) {
	t.Parallel()

	ids := []Id{
		FileNotFoundId,
		KeyNotFoundId,
		UnterminatedLiteralId,
		NoInsertionPointId,
		WriteFailureId,
		BackupPresentId,
		ConfigLoadFailedId,
		PackageNotFoundId,
		NothingToRegisterId,
		PermissionDeniedId,
		NotLiteralId,
	}
	if FileNotFoundId != 1 {
		t.Errorf("FileNotFoundId = %d, want 1", FileNotFoundId)
	}
	if len(Values()) != len(ids) {
		t.Errorf("len(Values()) = %d, want %d", len(Values()), len(ids))
	}

	for _, id := range ids {
		iss := Get(id)
		if iss == nil {
			t.Errorf("Get(%d) returned nil", id)
			continue
		}
		if iss.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, iss.Id())
		}
		if !strings.HasPrefix(strings.TrimSpace(string(iss.MarkdownMsg())), "# ") {
			t.Errorf("issue %d should start with a heading", id)
		}
	}

	if Get(Id(0)) != nil {
		t.Error("Get(0) should return nil")
	}
}

func TestIssue_LinksAreCopies(t *testing.T) {
	t.Parallel()

	iss := &Issue{id: Id(42), docLinks: []HttpLink{"https://example.org/a"}}
	links := iss.DocLinks()
	links[0] = "changed"
	if iss.DocLinks()[0] != "https://example.org/a" {
		t.Error("DocLinks() should return a copy")
	}
	if len(iss.ExtLinks()) != 0 {
		t.Error("ExtLinks() should be empty")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	out, err := Get(NothingToRegisterId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"Nothing to register", "provides.json", "extra.laravel"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q", want)
		}
	}

	withLinks := &Issue{mdMsg: "# Title", extLinks: []HttpLink{"https://example.org/help"}}
	out, err = withLinks.Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "See also") || !strings.Contains(out, "example.org/help") {
		t.Errorf("Render() should list links, got %q", out)
	}
}
