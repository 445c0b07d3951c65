// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/confreg/confreg/internal/testutil"
)

func TestSeverity_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		want     bool
	}{
		{SeverityWarning, true},
		{SeverityError, true},
		{"", false},
		{"WARNING", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			t.Parallel()

			ok, errs := tt.severity.IsValid()
			if ok != tt.want {
				t.Errorf("Severity(%q).IsValid() = %v, want %v", tt.severity, ok, tt.want)
			}
			if !tt.want && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidSeverity)) {
				t.Errorf("errors = %v, want ErrInvalidSeverity", errs)
			}
		})
	}
}

func TestDiscover_Diagnostics(t *testing.T) {
	t.Parallel()

	fs := testutil.MemFs(t, pkgFiles(map[string]string{
		"provides.toml": "providers = []\n",
		"composer.json": `{"autoload": {"psr-4": {"Acme\\Widgets\\": "src/", "Acme\\Gone\\": "gone/"}}}`,
		"phpunit.xml":   `<phpunit><testsuites><testsuite>`,
		"src/WidgetServiceProvider.php": `<?php
namespace Acme\Widgets;

use Illuminate\Support\ServiceProvider;

class WidgetServiceProvider extends ServiceProvider {}`,
	}))

	res, err := Discover(context.Background(), fs, testOptions())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if res.Source != SourceScan {
		t.Fatalf("Source = %v, want %v", res.Source, SourceScan)
	}

	want := []DiagnosticCode{CodeManifestEmpty, CodePhpunitParseSkipped, CodeSourceRootMissing}
	if len(res.Diagnostics) != len(want) {
		t.Fatalf("Diagnostics = %+v, want codes %v", res.Diagnostics, want)
	}
	for i, d := range res.Diagnostics {
		if d.Code != want[i] {
			t.Errorf("Diagnostics[%d].Code = %q, want %q", i, d.Code, want[i])
		}
		if d.Severity != SeverityWarning {
			t.Errorf("Diagnostics[%d].Severity = %q, want warning", i, d.Severity)
		}
		if d.Path == "" {
			t.Errorf("Diagnostics[%d].Path is empty", i)
		}
	}
}
