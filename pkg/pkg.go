//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text and default config paths.
	Name = "mare"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Marefile key resolution and scoping engine"
	// Script is the default file name of a Marefile in the working directory.
	Script = "Marefile"
)

// Version returns the semantic version of the mare module embedded at build
// time, without surrounding whitespace. It is printed by the CLI when users
// pass --version.
func Version() string { return strings.TrimSpace(version) }

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
