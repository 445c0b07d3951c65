// SPDX-License-Identifier: MPL-2.0

package literal

import (
	"errors"
	"slices"
	"testing"
)

func TestCUEEvaluator(t *testing.T) {
	t.Parallel()

	src := []byte(`// application registry
"providers": [
	"App\\Providers\\AppServiceProvider",
	// "Disabled\\Provider",
	"App\\Providers\\RouteServiceProvider",
]

"aliases": {
	"App":   "Illuminate\\Support\\Facades\\App"
	"Route": "Illuminate\\Support\\Facades\\Route"
}

"debug": true
`)

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		items, err := CUEEvaluator{Filename: "app.cue"}.Evaluate(src, "providers")
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		want := []string{`App\Providers\AppServiceProvider`, `App\Providers\RouteServiceProvider`}
		if got := Values(items); !slices.Equal(got, want) {
			t.Errorf("Values() = %q, want %q", got, want)
		}
	})

	t.Run("struct", func(t *testing.T) {
		t.Parallel()

		items, err := CUEEvaluator{Filename: "app.cue"}.Evaluate(src, "aliases")
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("len(items) = %d, want 2", len(items))
		}
		if items[0].Key != "App" || !items[0].Keyed {
			t.Errorf("items[0] = %+v", items[0])
		}
		if got, _ := Lookup(items, "Route"); got != `Illuminate\Support\Facades\Route` {
			t.Errorf("Lookup(Route) = %q", got)
		}
	})

	t.Run("scalar", func(t *testing.T) {
		t.Parallel()

		_, err := CUEEvaluator{}.Evaluate(src, "debug")
		if !errors.Is(err, ErrNotArray) {
			t.Errorf("error = %v, want ErrNotArray", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := CUEEvaluator{}.Evaluate(src, "nope")
		if !errors.Is(err, ErrKeyMissing) {
			t.Errorf("error = %v, want ErrKeyMissing", err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := CUEEvaluator{}.Evaluate([]byte(`"providers": [`), "providers")
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("error = %v, want ErrSyntax", err)
		}
	})
}

func TestForPath(t *testing.T) {
	t.Parallel()

	if _, ok := ForPath("config/app.php").(PHPEvaluator); !ok {
		t.Error("ForPath(app.php) should return PHPEvaluator")
	}
	if e, ok := ForPath("/etc/registry.CUE").(CUEEvaluator); !ok || e.Filename != "registry.CUE" {
		t.Errorf("ForPath(registry.CUE) = %#v", ForPath("/etc/registry.CUE"))
	}
}
