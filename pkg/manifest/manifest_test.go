package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_Basic(t *testing.T) {
	input := `# runtime deps
fastapi>=0.100.0
boto3
pycryptodome>=3.19.0

nltk>=3.8
`
	m, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if len(m.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(m.Entries))
	}
	if !m.Valid() {
		t.Errorf("expected valid manifest, got violations: %v", m.Violations)
	}

	first := m.Entries[0]
	if first.Name != "fastapi" || first.Op != ">=" || first.Version != "0.100.0" {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if first.Line != 2 {
		t.Errorf("expected line 2, got %d", first.Line)
	}

	bare := m.Entries[1]
	if bare.Name != "boto3" || bare.Op != "" || bare.Version != "" {
		t.Errorf("unexpected bare entry: %+v", bare)
	}
}

func TestParse_DuplicatesRetained(t *testing.T) {
	input := "requests>=2.31.0\nnumpy\nrequests>=2.31.0\n"
	m, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	// Duplicates are kept in file order, not collapsed.
	if len(m.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(m.Entries))
	}
	if got := m.Duplicates(); len(got) != 1 || got[0] != "requests" {
		t.Errorf("expected duplicate [requests], got %v", got)
	}
	if got := m.Names(); len(got) != 2 {
		t.Errorf("expected 2 distinct names, got %v", got)
	}
}

func TestParse_SkipsOptionsAndURLs(t *testing.T) {
	input := `-r base.txt
--index-url https://private.example/simple
git+https://github.com/user/repo.git
https://example.com/pkg.tar.gz
flask
`
	m, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if len(m.Entries) != 1 || m.Entries[0].Name != "flask" {
		t.Errorf("expected single flask entry, got %+v", m.Entries)
	}
	if len(m.Skipped) != 4 {
		t.Errorf("expected 4 skipped lines, got %v", m.Skipped)
	}
	if !m.Valid() {
		t.Errorf("skipped lines should not count as violations: %v", m.Violations)
	}
}

func TestParse_InlineCommentsAndMarkers(t *testing.T) {
	input := `uvicorn>=0.23.0  # ASGI server
pywin32>=306; sys_platform == "win32"
`
	m, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if len(m.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.Entries))
	}
	if m.Entries[0].Version != "0.23.0" {
		t.Errorf("inline comment not stripped: %+v", m.Entries[0])
	}
	if m.Entries[1].Name != "pywin32" {
		t.Errorf("environment marker not stripped: %+v", m.Entries[1])
	}
}

func TestParse_Violations(t *testing.T) {
	input := `good-pkg>=1.0
>=1.0
bad pkg name
dangling>=
==2.0
`
	m, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if len(m.Entries) != 1 {
		t.Errorf("expected 1 valid entry, got %d", len(m.Entries))
	}
	if len(m.Violations) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(m.Violations), m.Violations)
	}
	if m.Valid() {
		t.Error("manifest with violations should not be valid")
	}
	for _, v := range m.Violations {
		if v.Line == 0 {
			t.Errorf("violation missing line number: %+v", v)
		}
	}
}

func TestParse_Extras(t *testing.T) {
	m, err := Parse(strings.NewReader("uvicorn[standard]>=0.23.0\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(m.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m.Entries))
	}
	e := m.Entries[0]
	if e.Name != "uvicorn" || e.Op != ">=" || e.Version != "0.23.0" {
		t.Errorf("extras not folded: %+v", e)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Django", "django"},
		{"Flask_App", "flask-app"},
		{"zope.interface", "zope-interface"},
		{"some__odd--name", "some-odd-name"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEntry_String(t *testing.T) {
	e := Entry{Name: "requests", Op: ">=", Version: "2.31.0"}
	if got := e.String(); got != "requests>=2.31.0" {
		t.Errorf("unexpected String(): %s", got)
	}
	bare := Entry{Name: "numpy"}
	if got := bare.String(); got != "numpy" {
		t.Errorf("unexpected String(): %s", got)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(path, []byte("requests>=2.31.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if len(m.Entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(m.Entries))
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSupports(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"requirements.txt", true},
		{"requirements-dev.txt", true},
		{"requirements_test.txt", true},
		{"poetry.lock", false},
		{"setup.py", false},
	}

	for _, tt := range tests {
		if got := Supports(tt.name); got != tt.want {
			t.Errorf("Supports(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
