// Package engine resolves the keys of a Marefile.
//
// An [Engine] loads a Marefile into a tree of namespaces. Each key of the
// file is a namespace whose own keys are its value: in
//
//	configurations = Debug Release
//	cflags = -Wall
//	debug : base {
//	  cflags += -g
//	}
//
// the key configurations has the keys Debug and Release, and its text is
// the list of those names. Namespaces are compiled the first time one of
// their keys is needed.
//
// # Resolution
//
// A key is looked up in the namespace itself, then in the namespaces it
// inherits from ("debug : base") in declaration order, then among its
// default keys. Names in "${name}" references and inheritance lists are
// resolved outward through the enclosing namespaces as well. Inheritance may
// form cycles; a name that can only be found by following a cycle back to
// where the search started is not found.
//
// Keys come from three layers. From highest to lowest precedence:
// command-line keys ([Engine.AddCommandLineKey]), keys declared by the
// script (including inherited keys), and default keys
// ([Engine.AddDefaultKey]).
//
// # Diagnostics
//
// Errors in script content never stop the engine. Each is delivered once to
// the [Sink] given to [New] with the file and line of the statement that
// caused it, and the query that found it returns a fallback: false, an
// empty list, or empty text.
package engine
