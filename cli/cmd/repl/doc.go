// Package repl implements an interactive key browser for a loaded
// Marefile, built on Bubble Tea.
//
// The browser keeps its own key path and moves the engine cursor to it
// before every query, so commands such as "ls" and "text" always answer for
// the key shown in the prompt. Keys and commands complete with fuzzy
// matching; command lines persist in a history file.
package repl
