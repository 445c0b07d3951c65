// SPDX-License-Identifier: MPL-2.0

package litedit

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/confreg/confreg/internal/testutil"
	"github.com/confreg/confreg/pkg/literal"
)

const appPath = "/project/config/app.php"

const appPHP = `<?php

return [

	'name' => env('APP_NAME', 'Laravel'),

	'providers' => [
		'Illuminate\Auth\AuthServiceProvider',
		'Illuminate\Cache\CacheServiceProvider',
		// 'Illuminate\Mail\MailServiceProvider',
	],

	'aliases' => [
		'App' => 'Illuminate\Support\Facades\App',
		'Cache' => 'Illuminate\Support\Facades\Cache',
	],

];
`

func newEditor(t *testing.T, content string, opts ...Option) (*Editor, *testutil.FailingFs) {
	t.Helper()
	fs := &testutil.FailingFs{Fs: testutil.MemFs(t, map[string]string{appPath: content})}
	return New(appPath, append([]Option{WithFs(fs)}, opts...)...), fs
}

func values(t *testing.T, e *Editor, key string) []string {
	t.Helper()
	items, err := e.Items(key)
	if err != nil {
		t.Fatalf("Items(%q) error = %v", key, err)
	}
	return literal.Values(items)
}

func TestAddItem_Scenario(t *testing.T) {
	t.Parallel()

	src := "<?php\n\nreturn [\n\n\t'providers' => array(\n\t'A',\n\t'B',\n),\n\n];\n"
	want := "<?php\n\nreturn [\n\n\t'providers' => array(\n\t'A',\n\t'B',\n\t'C',\n),\n\n];\n"

	e, fs := newEditor(t, src)
	changed, err := e.AddItem("providers", "C")
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if !changed {
		t.Fatal("AddItem() reported no change")
	}
	if got := testutil.MustReadFile(t, fs, appPath); got != want {
		t.Errorf("file =\n%s\nwant\n%s", got, want)
	}
	testutil.MustNotExist(t, fs, BackupPath(appPath))
}

func TestAddItem_IdempotentAndRoundTrip(t *testing.T) {
	t.Parallel()

	e, fs := newEditor(t, appPHP)
	const provider = `Acme\Billing\BillingServiceProvider`

	if changed, err := e.AddItem("providers", provider); err != nil || !changed {
		t.Fatalf("first AddItem() = %v, %v", changed, err)
	}
	after := testutil.MustReadFile(t, fs, appPath)

	if changed, err := e.AddItem("providers", provider); err != nil || changed {
		t.Fatalf("second AddItem() = %v, %v", changed, err)
	}
	if got := testutil.MustReadFile(t, fs, appPath); got != after {
		t.Errorf("second AddItem() modified the file:\n%s", got)
	}

	got := values(t, e, "providers")
	want := []string{`Illuminate\Auth\AuthServiceProvider`, `Illuminate\Cache\CacheServiceProvider`, provider}
	if !slices.Equal(got, want) {
		t.Errorf("providers = %q, want %q", got, want)
	}
}

func TestAddItem_CommentSafety(t *testing.T) {
	t.Parallel()

	e, fs := newEditor(t, appPHP)
	if _, err := e.AddItem("providers", "New"); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	got := testutil.MustReadFile(t, fs, appPath)
	want := "\t\t'Illuminate\\Cache\\CacheServiceProvider',\n\t\t'New',\n\t\t// 'Illuminate\\Mail\\MailServiceProvider',\n"
	if !strings.Contains(got, want) {
		t.Errorf("new item should land after the last live item:\n%s", got)
	}
}

func TestAddItem_PreservesDoubleQuoteStyle(t *testing.T) {
	t.Parallel()

	src := "<?php return [\n\t\"providers\" => [\n\t\"A\",\n\t\"B\"\n\t],\n];\n"
	e, fs := newEditor(t, src)
	if _, err := e.AddItem("providers", `Acme\Notifications\Provider`); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	got := testutil.MustReadFile(t, fs, appPath)
	want := "\t\"B\",\n\t\"Acme\\\\Notifications\\\\Provider\",\n\t],"
	if !strings.Contains(got, want) {
		t.Errorf("file =\n%s\nshould contain\n%s", got, want)
	}
	if v := values(t, e, "providers"); !slices.Contains(v, `Acme\Notifications\Provider`) {
		t.Errorf("providers = %q", v)
	}
}

func TestAddItem_EmptyLiteral(t *testing.T) {
	t.Parallel()

	e, fs := newEditor(t, "<?php return ['providers' => []];\n")
	if _, err := e.AddItem("providers", "A"); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if got := testutil.MustReadFile(t, fs, appPath); got != "<?php return ['providers' => [\n\t\t'A',]];\n" {
		t.Errorf("file = %q", got)
	}
}

func TestAddItem_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "key not found", src: "<?php return ['aliases' => []];", want: ErrKeyNotFound},
		{name: "unterminated", src: "<?php return ['providers' => ['A',", want: ErrUnterminatedLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, fs := newEditor(t, tt.src)
			_, err := e.AddItem("providers", "X")
			if !errors.Is(err, tt.want) {
				t.Fatalf("AddItem() error = %v, want %v", err, tt.want)
			}
			var editErr *EditError
			if !errors.As(err, &editErr) || editErr.Op != "add" || editErr.Key != "providers" {
				t.Errorf("error should be an *EditError for add/providers, got %#v", err)
			}
			if got := testutil.MustReadFile(t, fs, appPath); got != tt.src {
				t.Errorf("file changed on failure: %q", got)
			}
			testutil.MustNotExist(t, fs, BackupPath(appPath))
		})
	}
}

func TestAddItem_WriteFailureKeepsBackup(t *testing.T) {
	t.Parallel()

	e, fs := newEditor(t, appPHP)
	fs.FailRename = true

	_, err := e.AddItem("providers", "X")
	if !errors.Is(err, ErrWriteFailure) {
		t.Fatalf("AddItem() error = %v, want ErrWriteFailure", err)
	}
	if got := testutil.MustReadFile(t, fs, BackupPath(appPath)); got != appPHP {
		t.Errorf("backup content = %q, want original", got)
	}
	if got := testutil.MustReadFile(t, fs, appPath); got != appPHP {
		t.Errorf("original changed: %q", got)
	}

	fs.FailRename = false
	if _, err := e.AddItem("providers", "X"); !errors.Is(err, ErrBackupPresent) {
		t.Errorf("AddItem() with pending backup error = %v, want ErrBackupPresent", err)
	}
}

func TestAddItem_DryRun(t *testing.T) {
	t.Parallel()

	e, fs := newEditor(t, appPHP, WithDryRun(true))
	changed, err := e.AddItem("providers", "X")
	if err != nil || !changed {
		t.Fatalf("AddItem() = %v, %v", changed, err)
	}
	if got := testutil.MustReadFile(t, fs, appPath); got != appPHP {
		t.Error("dry run should not write")
	}
}

func TestAddKeyedItem(t *testing.T) {
	t.Parallel()

	t.Run("new alias", func(t *testing.T) {
		t.Parallel()

		e, fs := newEditor(t, appPHP)
		changed, err := e.AddKeyedItem("aliases", "Billing", `Acme\Billing\Facades\Billing`)
		if err != nil || !changed {
			t.Fatalf("AddKeyedItem() = %v, %v", changed, err)
		}
		got := testutil.MustReadFile(t, fs, appPath)
		want := "\t\t'Cache' => 'Illuminate\\Support\\Facades\\Cache',\n\t\t'Billing' => 'Acme\\Billing\\Facades\\Billing',\n\t],"
		if !strings.Contains(got, want) {
			t.Errorf("file =\n%s", got)
		}
	})

	t.Run("same mapping is a no-op", func(t *testing.T) {
		t.Parallel()

		e, fs := newEditor(t, appPHP)
		changed, err := e.AddKeyedItem("aliases", "App", `Illuminate\Support\Facades\App`)
		if err != nil || changed {
			t.Fatalf("AddKeyedItem() = %v, %v", changed, err)
		}
		if testutil.MustReadFile(t, fs, appPath) != appPHP {
			t.Error("file changed")
		}
	})

	t.Run("different mapping disables the old one", func(t *testing.T) {
		t.Parallel()

		e, fs := newEditor(t, appPHP)
		if _, err := e.AddKeyedItem("aliases", "App", `Acme\App`); err != nil {
			t.Fatalf("AddKeyedItem() error = %v", err)
		}
		got := testutil.MustReadFile(t, fs, appPath)
		if !strings.Contains(got, `/*'App' => 'Illuminate\Support\Facades\App',*/`) {
			t.Errorf("old mapping should be commented out:\n%s", got)
		}
		items, err := e.Items("aliases")
		if err != nil {
			t.Fatal(err)
		}
		if v, _ := literal.Lookup(items, "App"); v != `Acme\App` {
			t.Errorf("App = %q, want Acme\\App", v)
		}
		if fs.Renames != 1 {
			t.Errorf("Renames = %d, want a single write", fs.Renames)
		}
		testutil.MustNotExist(t, fs, BackupPath(appPath))
	})

	t.Run("failed replace keeps the old mapping live", func(t *testing.T) {
		t.Parallel()

		e, fs := newEditor(t, appPHP)
		fs.FailRename = true

		_, err := e.AddKeyedItem("aliases", "Cache", `Acme\Cache`)
		if !errors.Is(err, ErrWriteFailure) {
			t.Fatalf("AddKeyedItem() error = %v, want ErrWriteFailure", err)
		}
		if got := testutil.MustReadFile(t, fs, appPath); got != appPHP {
			t.Errorf("file changed:\n%s", got)
		}
		items, err := e.Items("aliases")
		if err != nil {
			t.Fatal(err)
		}
		if v, _ := literal.Lookup(items, "Cache"); v != `Illuminate\Support\Facades\Cache` {
			t.Errorf("Cache = %q, want the original facade", v)
		}
	})
}

const laravel10PHP = `<?php

use Illuminate\Support\Facades\Facade;
use Illuminate\Support\ServiceProvider;

return [

	'providers' => ServiceProvider::defaultProviders()->merge([
		App\Providers\AppServiceProvider::class,
	])->toArray(),

	'aliases' => Facade::defaultAliases()->merge([
		'Example' => App\Facades\Example::class,
	])->toArray(),

];
`

func TestAddItem_ExpressionValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		add  func(e *Editor) (bool, error)
	}{
		{"provider", func(e *Editor) (bool, error) {
			return e.AddItem("providers", `Acme\Widgets\WidgetServiceProvider`)
		}},
		{"alias", func(e *Editor) (bool, error) {
			return e.AddKeyedItem("aliases", "Widget", `Acme\Widgets\Facades\Widget`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, fs := newEditor(t, laravel10PHP)
			for range 2 {
				changed, err := tt.add(e)
				if !errors.Is(err, ErrNotLiteral) {
					t.Fatalf("error = %v, want ErrNotLiteral", err)
				}
				if changed {
					t.Error("changed = true, want false")
				}
			}
			if got := testutil.MustReadFile(t, fs, appPath); got != laravel10PHP {
				t.Errorf("file changed:\n%s", got)
			}
			if fs.Renames != 0 {
				t.Errorf("Renames = %d, want 0", fs.Renames)
			}
			testutil.MustNotExist(t, fs, BackupPath(appPath))
		})
	}
}

func TestDisableItem(t *testing.T) {
	t.Parallel()

	t.Run("disable then re-add", func(t *testing.T) {
		t.Parallel()

		src := "<?php\n\nreturn [\n\n\t'providers' => array(\n\t'A',\n\t'B',\n),\n\n];\n"
		e, fs := newEditor(t, src)

		n, err := e.DisableItem("B", "providers")
		if err != nil || n != 1 {
			t.Fatalf("DisableItem() = %d, %v", n, err)
		}
		if v := values(t, e, "providers"); !slices.Equal(v, []string{"A"}) {
			t.Fatalf("providers after disable = %q", v)
		}

		if n, err := e.DisableItem("B", "providers"); err != nil || n != 0 {
			t.Fatalf("second DisableItem() = %d, %v", n, err)
		}

		if _, err := e.AddItem("providers", "B"); err != nil {
			t.Fatalf("AddItem() error = %v", err)
		}
		if v := values(t, e, "providers"); !slices.Equal(v, []string{"A", "B"}) {
			t.Errorf("providers after re-add = %q", v)
		}
		if got := testutil.MustReadFile(t, fs, appPath); !strings.Contains(got, "/*'B',*/") {
			t.Errorf("disabled entry should be kept:\n%s", got)
		}
	})

	t.Run("every live match in one write", func(t *testing.T) {
		t.Parallel()

		src := "<?php return ['providers' => ['X', 'A', \"X\", X::class]];"
		e, fs := newEditor(t, src)
		n, err := e.DisableItem("X", "providers")
		if err != nil || n != 3 {
			t.Fatalf("DisableItem() = %d, %v", n, err)
		}
		want := "<?php return ['providers' => [/*'X',*/ 'A', /*\"X\",*/ /*X::class*/]];"
		if got := testutil.MustReadFile(t, fs, appPath); got != want {
			t.Errorf("file =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()

		e, fs := newEditor(t, appPHP)
		if n, err := e.DisableItem("Nope", "providers"); err != nil || n != 0 {
			t.Fatalf("DisableItem() = %d, %v", n, err)
		}
		if testutil.MustReadFile(t, fs, appPath) != appPHP {
			t.Error("file changed")
		}
	})

	t.Run("outside the literal is ignored", func(t *testing.T) {
		t.Parallel()

		e, _ := newEditor(t, appPHP)
		if n, err := e.DisableItem("App", "providers"); err != nil || n != 0 {
			t.Fatalf("DisableItem() = %d, %v", n, err)
		}
	})
}

func TestEditor_CUE(t *testing.T) {
	t.Parallel()

	const path = "/project/registry.cue"
	src := "providers: [\n\t\"A\",\n\t\"B\",\n]\n\naliases: {\n\t\"App\": \"X\"\n}\n"
	fs := testutil.MemFs(t, map[string]string{path: src})
	e := New(path, WithFs(fs))

	if _, err := e.AddItem("providers", `Acme\C`); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if _, err := e.AddKeyedItem("aliases", "Route", "Y"); err != nil {
		t.Fatalf("AddKeyedItem() error = %v", err)
	}
	want := "providers: [\n\t\"A\",\n\t\"B\",\n\t\"Acme\\\\C\",\n]\n\naliases: {\n\t\"App\": \"X\",\n\t\"Route\": \"Y\",\n}\n"
	if got := testutil.MustReadFile(t, fs, path); got != want {
		t.Fatalf("file =\n%s\nwant\n%s", got, want)
	}

	if n, err := e.DisableItem("App", "aliases"); err != nil || n != 1 {
		t.Fatalf("DisableItem() = %d, %v", n, err)
	}
	items, err := e.Items("aliases")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := literal.Lookup(items, "App"); ok {
		t.Error("App should be disabled")
	}
	if v, _ := literal.Lookup(items, "Route"); v != "Y" {
		t.Errorf("Route = %q", v)
	}
	if v := values(t, e, "providers"); !slices.Equal(v, []string{"A", "B", `Acme\C`}) {
		t.Errorf("providers = %q", v)
	}
}
