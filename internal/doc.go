// Package internal contains the implementation packages for quire.
//
// # Package Organization
//
// Leaves first:
//
//   - errors: SiteError taxonomy shared by every stage
//   - logging: slog-backed structured logger and operation timers
//   - walker: lazy recursive enumeration of named content units
//   - markdown: goldmark-backed Markdown rendering
//   - post: front matter parsing, the Post entity and the date-ordered registry
//   - templates: template store and the index, list and post views
//   - stylesheet: stylesheet compilers (tdewolff minify or an external command)
//   - output: output tree creation and confined writes
//   - validation: argument, path and link checks
//   - build: the full rebuild pass and pass metrics
//   - watcher: fsnotify watching with debounced, coalescing notifications
//   - config: Viper-backed configuration with ozzo validation
//   - services: build, watch and init operations used by the CLI
//   - version: build metadata
//   - testutils: fixtures shared by package tests
//
// # Pass Flow
//
// A watch notification, or a build command, starts one pass. The pass loads
// templates, parses posts into a fresh registry, compiles stylesheets and
// writes the index, the blog list and one page per post. Passes never
// overlap, and a failed pass leaves the watcher running.
package internal
