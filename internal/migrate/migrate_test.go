package migrate

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/docwarden/internal/storage"
	"github.com/starford/docwarden/internal/testutil"
)

func testConfig() Config {
	return Config{
		Rules:          DefaultRules,
		MarkerDir:      ".claude",
		MigratedMarker: "scope-system.md",
		LegacyMarker:   "layer-system.md",
		SkipTokens:     []string{"scope-system", "layer-system"},
		ExtraFiles:     []string{"CLAUDE.md"},
	}
}

func newMigrator(t *testing.T, store storage.Provider, opts ...Option) *Migrator {
	t.Helper()
	m, err := New(store, testConfig(), nil, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestApply(t *testing.T) {
	_, store := testutil.TestStore(t, nil)
	m := newMigrator(t, store)

	tests := []struct {
		in, want string
	}{
		{"layer: framework", "scope: framework"},
		{"see layer-system.md", "see scope-system.md"},
		{"run layer_validate.py", "run scope_validate.py"},
		{"The Layer model", "The Scope model"},
		{"each layer is", "each scope is"},
		{"Layers and layers", "Scopes and scopes"},
		{"레이어 구조", "스코프 구조"},
		{"multilayer players", "multilayer players"},
		{"LAYER stays", "LAYER stays"},
		{"layer는 유지", "layer는 유지"},
		{"레이어layer", "스코프layer"},
		{"(layer) layer_x layer", "(scope) layer_x scope"},
		{"layer layer", "scope scope"},
		{"Layer의 Layers", "Layer의 Scopes"},
	}
	for _, tt := range tests {
		if got := m.Apply(tt.in); got != tt.want {
			t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWordBoundary(t *testing.T) {
	tests := []struct {
		s    string
		i    int
		want bool
	}{
		{"layer", 0, true},
		{"layer", 5, true},
		{"layer는", 5, false},
		{"어layer", len("어"), false},
		{"a layer", 1, true},
		{"", 0, false},
	}
	for _, tt := range tests {
		if got := wordBoundary(tt.s, tt.i); got != tt.want {
			t.Errorf("wordBoundary(%q, %d) = %v, want %v", tt.s, tt.i, got, tt.want)
		}
	}
}

func TestApplyIdempotent(t *testing.T) {
	_, store := testutil.TestStore(t, nil)
	m := newMigrator(t, store)
	in := "layer: shared\nLayer, layers, Layers, layer-system.md, layer_validate.py, 레이어\n"
	once := m.Apply(in)
	if twice := m.Apply(once); twice != once {
		t.Errorf("second Apply changed content: %q -> %q", once, twice)
	}
	if strings.Contains(strings.ToLower(once), "layer") {
		t.Errorf("legacy term left: %q", once)
	}
}

func TestMigrated(t *testing.T) {
	_, store := testutil.TestStore(t, nil)
	m := newMigrator(t, store)
	if !m.Migrated("see scope-system.md") {
		t.Error("expected migrated")
	}
	if m.Migrated("see scope-system.md and layer-system.md") {
		t.Error("legacy reference present, not migrated")
	}
	if m.Migrated("nothing here") {
		t.Error("no marker, not migrated")
	}
}

func TestNewInvalidRule(t *testing.T) {
	_, store := testutil.TestStore(t, nil)
	cfg := testConfig()
	cfg.Rules = []Rule{{Pattern: "(", Replacement: "x"}}
	if _, err := New(store, cfg, nil); err == nil {
		t.Error("expected compile error")
	}
}

func migrateTree(t *testing.T) (string, *storage.FS) {
	t.Helper()
	return testutil.TestStore(t, map[string]string{
		".claude/framework/layer-system.md": "# Layer system\n",
		".claude/framework/scope-system.md": "# Scope system\n",
		".claude/framework/rules.md":        "Each layer has a layer: field.\n",
		".claude/framework/done.md":         "See scope-system.md for the layer model.\n",
		".claude/framework/clean.md":        "Nothing to see.\n",
		"CLAUDE.md":                         "Read the Layers doc.\n",
		"README.md":                         "The layer is not migrated here.\n",
	})
}

func TestFiles(t *testing.T) {
	root, store := migrateTree(t)
	m := newMigrator(t, store)
	files, err := m.Files()
	if err != nil {
		t.Fatal(err)
	}
	var rels []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f)
		rels = append(rels, filepath.ToSlash(rel))
	}
	want := []string{
		".claude/framework/clean.md",
		".claude/framework/done.md",
		".claude/framework/rules.md",
		"CLAUDE.md",
	}
	if strings.Join(rels, ",") != strings.Join(want, ",") {
		t.Errorf("Files = %v, want %v", rels, want)
	}
}

func TestRun(t *testing.T) {
	root, store := migrateTree(t)
	m := newMigrator(t, store)

	st, err := m.Run()
	if err != nil {
		t.Fatal(err)
	}
	if st != (Stats{Processed: 4, Updated: 2, Skipped: 2}) {
		t.Errorf("stats = %+v", st)
	}
	if got := testutil.ReadFile(t, root, ".claude/framework/rules.md"); got != "Each scope has a scope: field.\n" {
		t.Errorf("rules.md = %q", got)
	}
	if got := testutil.ReadFile(t, root, "CLAUDE.md"); got != "Read the Scopes doc.\n" {
		t.Errorf("CLAUDE.md = %q", got)
	}
	if got := testutil.ReadFile(t, root, ".claude/framework/done.md"); !strings.Contains(got, "layer model") {
		t.Errorf("already migrated file was rewritten: %q", got)
	}
	if got := testutil.ReadFile(t, root, ".claude/framework/rules.md.bak"); got != "Each layer has a layer: field.\n" {
		t.Errorf("backup = %q", got)
	}

	st, err = m.Run()
	if err != nil {
		t.Fatal(err)
	}
	if st.Updated != 0 || st.Skipped != 4 {
		t.Errorf("second run stats = %+v", st)
	}
}

func TestRunDryRun(t *testing.T) {
	root, store := migrateTree(t)
	m := newMigrator(t, store, WithDryRun(true))

	st, err := m.Run()
	if err != nil {
		t.Fatal(err)
	}
	if st.Updated != 2 {
		t.Errorf("stats = %+v", st)
	}
	if got := testutil.ReadFile(t, root, ".claude/framework/rules.md"); got != "Each layer has a layer: field.\n" {
		t.Errorf("dry run wrote rules.md: %q", got)
	}
	if store.Exists(".claude/framework/rules.md.bak") {
		t.Error("dry run wrote a backup")
	}
}
