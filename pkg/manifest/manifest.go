package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/parthk/blockvault/pkg/errors"
)

// requirementRE matches a single requirement line: a package name optionally
// followed by a version comparator and version. Environment markers and
// inline comments are handled before this is applied.
var requirementRE = regexp.MustCompile(
	`^([a-zA-Z0-9][-a-zA-Z0-9._]*)\s*(>=|<=|==|~=|!=|>|<)?\s*([a-zA-Z0-9][-a-zA-Z0-9._*+!]*)?$`)

// Entry is a single requirement parsed from a manifest.
//
// Entries are not required to be unique: the same name may appear multiple
// times and all occurrences are retained in file order.
type Entry struct {
	Name    string // Normalized package name (lowercase, underscores folded to hyphens)
	Raw     string // Name exactly as written
	Op      string // Version comparator (">=", "==", ...), empty for bare names
	Version string // Version string, empty for bare names
	Line    int    // 1-based line number in the source
}

// String renders the entry back in requirement form.
func (e Entry) String() string {
	if e.Op == "" {
		return e.Name
	}
	return fmt.Sprintf("%s%s%s", e.Name, e.Op, e.Version)
}

// Violation describes a line that does not match the requirement grammar.
type Violation struct {
	Line int    // 1-based line number
	Text string // The offending line, trimmed
	Err  string // Why the line was rejected
}

// Manifest holds the parsed contents of a dependency manifest file.
type Manifest struct {
	Entries    []Entry     // Requirements in file order, duplicates retained
	Skipped    []int       // Lines skipped (option flags, URL requirements)
	Violations []Violation // Lines that failed the requirement grammar
}

// Names returns the distinct normalized package names in first-seen order.
func (m *Manifest) Names() []string {
	seen := make(map[string]bool, len(m.Entries))
	var names []string
	for _, e := range m.Entries {
		if !seen[e.Name] {
			seen[e.Name] = true
			names = append(names, e.Name)
		}
	}
	return names
}

// Duplicates returns normalized names that appear more than once, sorted.
func (m *Manifest) Duplicates() []string {
	count := make(map[string]int, len(m.Entries))
	for _, e := range m.Entries {
		count[e.Name]++
	}
	var dups []string
	for name, n := range count {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}

// Valid reports whether every non-comment, non-blank line matched the
// requirement grammar.
func (m *Manifest) Valid() bool {
	return len(m.Violations) == 0
}

// Parse reads a requirements-style manifest from r.
//
// The format is line-oriented: each non-blank, non-comment line holds a
// package name optionally followed by a version comparator and version
// string. Lines beginning with "#" are comments; inline comments after
// requirement text are stripped. Lines beginning with "-" (installer option
// flags) and URL requirements are recorded as skipped rather than rejected,
// since they belong to the installer, not the requirement grammar.
//
// Parsing never fails on malformed requirement lines; they are collected as
// Violations so that callers can report all problems at once.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if strings.HasPrefix(text, "-") {
			m.Skipped = append(m.Skipped, line)
			continue
		}
		if strings.Contains(text, "://") || strings.HasPrefix(text, "git+") {
			m.Skipped = append(m.Skipped, line)
			continue
		}

		// Strip inline comments and environment markers.
		if i := strings.Index(text, "#"); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if i := strings.Index(text, ";"); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if text == "" {
			continue
		}

		entry, err := parseLine(text, line)
		if err != nil {
			m.Violations = append(m.Violations, Violation{Line: line, Text: text, Err: err.Error()})
			continue
		}
		m.Entries = append(m.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest")
	}
	return m, nil
}

// ParseFile reads and parses the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "open manifest %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Supports reports whether filename looks like a requirements manifest.
func Supports(filename string) bool {
	return filename == "requirements.txt" ||
		(strings.HasPrefix(filename, "requirements") && strings.HasSuffix(filename, ".txt"))
}

func parseLine(text string, line int) (Entry, error) {
	// Extras ("pkg[extra1,extra2]") are part of the installer surface, not
	// the name; fold them away before matching.
	name := text
	var rest string
	if i := strings.Index(text, "["); i >= 0 {
		j := strings.Index(text, "]")
		if j < i {
			return Entry{}, fmt.Errorf("unterminated extras bracket")
		}
		name = text[:i]
		rest = strings.TrimSpace(text[j+1:])
		text = name + rest
	}

	matches := requirementRE.FindStringSubmatch(text)
	if matches == nil {
		return Entry{}, fmt.Errorf("does not match package-requirement grammar")
	}

	raw, op, version := matches[1], matches[2], matches[3]
	if op != "" && version == "" {
		return Entry{}, fmt.Errorf("comparator %q without version", op)
	}
	if op == "" && version != "" {
		return Entry{}, fmt.Errorf("version %q without comparator", version)
	}

	return Entry{
		Name:    Normalize(raw),
		Raw:     raw,
		Op:      op,
		Version: version,
		Line:    line,
	}, nil
}

// Normalize folds a package name to its canonical registry form:
// lowercase with underscores and runs of separators collapsed to hyphens.
func Normalize(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, ".", "-")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	return name
}
