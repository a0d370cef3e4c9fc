// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"zombiezen.com/go/log/testlog"
)

func TestNilLayers(t *testing.T) {
	layers := (Layers)(nil)
	if _, ok := layers.Lookup("foo", "bar"); ok {
		t.Error("Lookup(...) found a value; want none")
	}
	if layers.SectionExists("foo") {
		t.Error("SectionExists(...) = true; want false")
	}
	if got := layers.Sections(); len(got) > 0 {
		t.Errorf("Sections() = %q; want empty", got)
	}
	if got := layers.Keys("foo"); len(got) > 0 {
		t.Errorf("Keys(...) = %q; want empty", got)
	}
	if got := layers.Int("foo", "bar", 7); got != 7 {
		t.Errorf("Int(...) = %d; want 7", got)
	}
}

func TestLayersAccess(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		section string
		key     string
		want    string
		wantOK  bool
	}{
		{
			name:    "ExistsInFirst",
			sources: []string{"[s]\nFOO = bar\n", "[s]\nBAZ = quux\n"},
			section: "s",
			key:     "FOO",
			want:    "bar",
			wantOK:  true,
		},
		{
			name:    "ExistsInSecond",
			sources: []string{"[s]\nFOO = bar\n", "[s]\nBAZ = quux\n"},
			section: "s",
			key:     "BAZ",
			want:    "quux",
			wantOK:  true,
		},
		{
			name:    "DoesNotExist",
			sources: []string{"[s]\nFOO = bar\n", "[s]\nBAZ = quux\n"},
			section: "s",
			key:     "bork",
		},
		{
			name:    "FirstWins",
			sources: []string{"[s]\nFOO = bar\n", "[s]\nFOO = baz\n"},
			section: "s",
			key:     "FOO",
			want:    "bar",
			wantOK:  true,
		},
		{
			name:    "NilLayer",
			sources: []string{"", "[s]\nFOO = baz\n"},
			section: "s",
			key:     "FOO",
			want:    "baz",
			wantOK:  true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			layers := make(Layers, 0, len(test.sources))
			for _, src := range test.sources {
				if src == "" {
					layers = append(layers, nil)
					continue
				}
				st, err := Parse(strings.NewReader(src))
				if err != nil {
					t.Fatal(err)
				}
				layers = append(layers, st)
			}
			got, ok := layers.Lookup(test.section, test.key)
			if got != test.want || ok != test.wantOK {
				t.Errorf("Lookup(%q, %q) = %q, %t; want %q, %t", test.section, test.key, got, ok, test.want, test.wantOK)
			}
			if got := layers.KeyExists(test.section, test.key); got != test.wantOK {
				t.Errorf("KeyExists(%q, %q) = %t; want %t", test.section, test.key, got, test.wantOK)
			}
			if got := layers.String(test.section, test.key, "def"); test.wantOK && got != test.want || !test.wantOK && got != "def" {
				t.Errorf("String(%q, %q, \"def\") = %q", test.section, test.key, got)
			}
		})
	}
}

func TestLayersTyped(t *testing.T) {
	top := new(Store)
	top.SetString("s", "port", "not-a-number")
	top.SetString("s", "debug", "nope")
	bottom := new(Store)
	bottom.SetInt("s", "port", 8080)
	bottom.SetFloat("s", "ratio", 0.5)
	bottom.SetBool("s", "debug", true)
	bottom.SetBool("s", "verbose", true)
	bottom.AddSection("other")
	layers := Layers{top, bottom}

	// The top layer answers even when its value does not parse.
	if got := layers.Int("s", "port", 1); got != 1 {
		t.Errorf("Int(\"s\", \"port\", 1) = %d; want 1", got)
	}
	if got := layers.Bool("s", "debug", true); got {
		t.Error("Bool(\"s\", \"debug\", true) = true; want false")
	}
	if got := layers.Bool("s", "verbose", false); !got {
		t.Error("Bool(\"s\", \"verbose\", false) = false; want true")
	}
	if got := layers.Float("s", "ratio", 0); got != 0.5 {
		t.Errorf("Float(\"s\", \"ratio\", 0) = %g; want 0.5", got)
	}
	if diff := cmp.Diff([]string{"other", "s"}, layers.Sections()); diff != "" {
		t.Errorf("Sections() (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"debug", "port", "ratio", "verbose"}, layers.Keys("s")); diff != "" {
		t.Errorf("Keys(\"s\") (-want +got):\n%s", diff)
	}
	if !layers.SectionExists("other") {
		t.Error("SectionExists(\"other\") = false; want true")
	}
}

func TestLoadLayers(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	dir := t.TempDir()
	user := filepath.Join(dir, "user.ini")
	system := filepath.Join(dir, "system.ini")
	if err := os.WriteFile(system, []byte("[Display]\nwidth = 1024\nheight = 768\n"), 0o666); err != nil {
		t.Fatal(err)
	}

	layers, err := LoadLayers(ctx, user, system)
	if err != nil {
		t.Fatal("LoadLayers:", err)
	}
	if len(layers) != 2 {
		t.Fatalf("len(layers) = %d; want 2", len(layers))
	}
	if got := layers.Int("Display", "width", 0); got != 1024 {
		t.Errorf("width = %d; want 1024", got)
	}

	layers[0].SetInt("Display", "width", 1920)
	if err := layers[0].Save(user); err != nil {
		t.Fatal("Save:", err)
	}
	layers, err = LoadLayers(ctx, user, system)
	if err != nil {
		t.Fatal("LoadLayers:", err)
	}
	got := map[string]int{
		"width":  layers.Int("Display", "width", 0),
		"height": layers.Int("Display", "height", 0),
	}
	want := map[string]int{"width": 1920, "height": 768}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
}

func TestLoadLayersError(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	dir := t.TempDir()
	good := filepath.Join(dir, "good.ini")
	bad := filepath.Join(dir, "bad.ini")
	if err := os.WriteFile(good, []byte("[s]\nk = v\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("k = v\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	layers, err := LoadLayers(ctx, good, bad)
	if err == nil {
		t.Fatal("LoadLayers did not return error")
	}
	if len(layers) != 1 {
		t.Errorf("len(layers) = %d; want 1 (layers before the error)", len(layers))
	}
}
