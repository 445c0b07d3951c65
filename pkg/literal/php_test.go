// SPDX-License-Identifier: MPL-2.0

package literal

import (
	"errors"
	"slices"
	"testing"
)

const laravelApp = `<?php

return array(

	/*
	|--------------------------------------------------------------------------
	| Application Debug Mode
	|--------------------------------------------------------------------------
	*/

	'debug' => (bool) env('APP_DEBUG', false),

	'url' => 'http://localhost',

	'providers' => array(
		'Illuminate\Foundation\Providers\ArtisanServiceProvider',
		'Illuminate\Auth\AuthServiceProvider', // auth
		# 'Illuminate\Cache\CacheServiceProvider',
		/* 'Illuminate\Session\SessionServiceProvider', */
		App\Providers\RouteServiceProvider::class,
	),

	'aliases' => [
		'App'   => 'Illuminate\Support\Facades\App',
		"Str"   => "Illuminate\\Support\\Str",
		'Route' => \Illuminate\Support\Facades\Route::class,
	],

);
`

func TestPHPEvaluator_Providers(t *testing.T) {
	t.Parallel()

	items, err := PHPEvaluator{}.Evaluate([]byte(laravelApp), "providers")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	want := []string{
		`Illuminate\Foundation\Providers\ArtisanServiceProvider`,
		`Illuminate\Auth\AuthServiceProvider`,
		`App\Providers\RouteServiceProvider`,
	}
	if got := Values(items); !slices.Equal(got, want) {
		t.Errorf("Values() = %q, want %q", got, want)
	}
	for _, it := range items {
		if it.Keyed {
			t.Errorf("list item %q should not be keyed", it.Value)
		}
	}
}

func TestPHPEvaluator_Aliases(t *testing.T) {
	t.Parallel()

	items, err := PHPEvaluator{}.Evaluate([]byte(laravelApp), "aliases")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{key: "App", want: `Illuminate\Support\Facades\App`},
		{key: "Str", want: `Illuminate\Support\Str`},
		{key: "Route", want: `Illuminate\Support\Facades\Route`},
	}
	for _, tt := range tests {
		got, ok := Lookup(items, tt.key)
		if !ok {
			t.Errorf("Lookup(%q) not found", tt.key)
			continue
		}
		if got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestPHPEvaluator_CompoundValuesKeepSource(t *testing.T) {
	t.Parallel()

	src := `<?php return ['conn' => ['redis' => env('REDIS_HOST', '127.0.0.1'), 'port' => 6379]];`
	items, err := PHPEvaluator{}.Evaluate([]byte(src), "conn")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got, _ := Lookup(items, "redis"); got != "env('REDIS_HOST', '127.0.0.1')" {
		t.Errorf("redis = %q", got)
	}
	if got, _ := Lookup(items, "port"); got != "6379" {
		t.Errorf("port = %q", got)
	}
}

func TestPHPEvaluator_NestedKeyFallback(t *testing.T) {
	t.Parallel()

	src := `<?php return ['app' => ['providers' => ['A', 'B']]];`
	items, err := PHPEvaluator{}.Evaluate([]byte(src), "providers")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got := Values(items); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("Values() = %q", got)
	}
}

func TestPHPEvaluator_LastDuplicateWins(t *testing.T) {
	t.Parallel()

	src := `<?php return ['aliases' => ['Foo' => 'Old', 'Foo' => 'New']];`
	items, err := PHPEvaluator{}.Evaluate([]byte(src), "aliases")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got, _ := Lookup(items, "Foo"); got != "New" {
		t.Errorf("Lookup(Foo) = %q, want New", got)
	}
}

func TestPHPEvaluator_Heredoc(t *testing.T) {
	t.Parallel()

	src := "<?php return ['notes' => [<<<EOT\nline one\nEOT, 'x']];"
	items, err := PHPEvaluator{}.Evaluate([]byte(src), "notes")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got := Values(items); !slices.Equal(got, []string{"line one", "x"}) {
		t.Errorf("Values() = %q", got)
	}
}

func TestPHPEvaluator_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		key  string
		want error
	}{
		{name: "missing key", src: `<?php return ['a' => []];`, key: "providers", want: ErrKeyMissing},
		{name: "scalar value", src: `<?php return ['providers' => 'x'];`, key: "providers", want: ErrNotArray},
		{name: "no return", src: `<?php $x = 1;`, key: "providers", want: ErrSyntax},
		{name: "unterminated array", src: `<?php return ['providers' => ['A',`, key: "providers", want: ErrSyntax},
		{name: "unterminated string", src: `<?php return ['providers' => ['A]];`, key: "providers", want: ErrSyntax},
		{name: "unbalanced call", src: `<?php return ['providers' => [env('A']];`, key: "providers", want: ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := PHPEvaluator{}.Evaluate([]byte(tt.src), tt.key)
			if !errors.Is(err, tt.want) {
				t.Errorf("Evaluate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSyntaxErrorOffset(t *testing.T) {
	t.Parallel()

	_, err := PHPEvaluator{}.Evaluate([]byte(`<?php return [ /* open`), "x")
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *SyntaxError, got %T (%v)", err, err)
	}
	if synErr.Offset != 15 {
		t.Errorf("Offset = %d, want 15", synErr.Offset)
	}
}
