package snapstore

import (
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultName is the local snapshot name used when a test does not give one.
const DefaultName = "snapshot"

// ID names one snapshot. Test is the full name reported by testing.TB,
// including any subtest path; Name is unique only within that test.
type ID struct {
	Package string
	Test    string
	Name    string
}

// NewID returns an ID, substituting DefaultName for an empty name.
func NewID(pkg, test, name string) ID {
	if name == "" {
		name = DefaultName
	}
	return ID{Package: pkg, Test: test, Name: name}
}

// Suite returns the top-level test function name.
func (id ID) Suite() string {
	suite, _, _ := strings.Cut(id.Test, "/")
	return suite
}

// Method returns the subtest path below the suite, or the suite itself when
// the test has no subtests.
func (id ID) Method() string {
	_, sub, ok := strings.Cut(id.Test, "/")
	if !ok || sub == "" {
		return id.Test
	}
	return sub
}

// QualifiedMethod returns the test name prefixed by its package.
func (id ID) QualifiedMethod() string {
	if id.Package == "" {
		return id.Test
	}
	return id.Package + "." + id.Test
}

func (id ID) String() string {
	return id.QualifiedMethod() + "#" + id.Name
}

// dir returns the directory holding the id's variants, relative to a store
// root.
func (id ID) dir() string {
	var parts []string
	for _, p := range strings.FieldsFunc(id.Package, func(r rune) bool { return r == '/' || r == '.' }) {
		parts = append(parts, Sanitize(p))
	}
	parts = append(parts, Sanitize(id.Suite()))
	return filepath.Join(parts...)
}

// file returns the base file name of variant index.
func (id ID) file(index int) string {
	return Sanitize(id.Method()) + "." + Sanitize(id.Name) + "." + strconv.Itoa(index) + ".png"
}

// Sanitize replaces characters that are not filesystem-safe.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
