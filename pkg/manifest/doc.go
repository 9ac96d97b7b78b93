// Package manifest parses line-oriented dependency manifests.
//
// # Format
//
// A manifest is a flat text file consumed by an external package installer.
// Each non-blank, non-comment line holds a package name optionally followed
// by a version comparator and version string:
//
//	# comment
//	fastapi>=0.100.0
//	boto3
//	pycryptodome>=3.19.0
//
// Lines beginning with "#" are comments. Entries are not required to be
// unique and no ordering semantics are implied beyond file position. Option
// flags ("-r other.txt") and URL requirements are skipped, not rejected.
//
// # Validation
//
// [Parse] collects grammar violations instead of failing on the first bad
// line, so a linter can report every problem in one pass:
//
//	m, err := manifest.ParseFile("requirements.txt")
//	if err != nil {
//	    return err
//	}
//	for _, v := range m.Violations {
//	    fmt.Printf("line %d: %s (%s)\n", v.Line, v.Text, v.Err)
//	}
package manifest
