// Package lang parses Marefiles into statement trees.
//
// A Marefile declares nested keys. The parser is hand-written recursive
// descent; it keeps going after a syntax error so that a single parse
// reports every problem in the file.
//
// # Grammar
//
// Informal EBNF. Statements end at a newline or ';'. A backslash before a
// newline continues the line. Comments start with '#' or '//' at the start
// of a token, or are enclosed in '/*' and '*/'.
//
//	File      → Statement* EOF
//	Statement → Assign | Inherit | If | Include | Term+
//	Assign    → Name ('=' | '+=') Term*
//	Inherit   → Name ':' Name* Block?
//	If        → 'if' Condition Block ('else' (If | Block))?
//	Include   → 'include' (String | Word)
//	Term      → Block | String | Reference | Word
//	Block     → '{' Statement* '}'
//	Reference → '${' Name '}'
//
// A Block used as a term splices its statements into the enclosing value,
// so "flags = { -Wall -O2 }" and "flags = -Wall -O2" are equivalent.
// Conditions are captured as raw text for evaluation by the caller.
//
// # Example
//
//	name = myApp
//	configurations = Debug Release
//
//	cppApplication = {
//	  compiler = g++
//	  flags = -Wall
//	}
//
//	targets = {
//	  myApp : cppApplication {
//	    flags += -O2
//	    if configuration == "Debug" {
//	      defines = DEBUG
//	    }
//	    output = "build/${name}"
//	  }
//	}
//
//	include "common.mare"
//
// # Caching
//
// Parse results are cached by a hash of the file name, options and source
// text, so repeated loads of an unchanged Marefile are cheap. [ClearCache]
// discards the cache.
package lang
