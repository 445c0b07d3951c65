// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const manifestSchema = `
#Manifest: close({
	providers?: [...string]
	aliases?: [string]: string
	priority?: int & >=0
})
`

type manifest struct {
	Providers []string          `json:"providers"`
	Aliases   map[string]string `json:"aliases"`
	Priority  int               `json:"priority"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
providers: ["Acme\\Billing\\BillingServiceProvider"]
aliases: Billing: "Acme\\Billing\\Facades\\Billing"
`)
		res, err := ParseAndDecode[manifest]([]byte(manifestSchema), data, "#Manifest", WithConcrete(false))
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		if len(res.Value.Providers) != 1 || res.Value.Providers[0] != `Acme\Billing\BillingServiceProvider` {
			t.Errorf("Providers = %q", res.Value.Providers)
		}
		if res.Value.Aliases["Billing"] != `Acme\Billing\Facades\Billing` {
			t.Errorf("Aliases = %v", res.Value.Aliases)
		}
		if !res.Unified.Exists() {
			t.Error("Unified value should be populated")
		}
	})

	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "syntax error", data: `providers: [`, want: "provides.cue"},
		{name: "wrong type", data: `providers: "A"`, want: "providers"},
		{name: "closed struct", data: `extra: 1`, want: "extra"},
		{name: "constraint", data: `priority: -1`, want: "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseAndDecode[manifest]([]byte(manifestSchema), []byte(tt.data), "#Manifest",
				WithFilename("provides.cue"), WithConcrete(false))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[manifest]([]byte(manifestSchema), []byte(`priority: 1`), "#Manifest", WithMaxFileSize(4))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("error = %v, want size error", err)
		}
	})

	t.Run("unknown definition", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[manifest]([]byte(manifestSchema), []byte(`priority: 1`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "#Missing") {
			t.Errorf("error = %v, want missing definition", err)
		}
	})
}
