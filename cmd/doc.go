// Package cmd provides the command-line interface for quire.
//
// # Available Commands
//
//   - init: Create an input tree, sample content and .quire.yml
//   - new: Create a post with front matter and a slug derived from its title
//   - build: Run one build pass and exit
//   - watch: Build, then rebuild on every debounced burst of changes
//   - config: Show or validate the resolved configuration
//   - version: Print build metadata
//
// # Command Examples
//
//	// Scaffold a site and build it
//	quire init my-blog
//	quire build --input my-blog/input --output my-blog/output
//
//	// Rebuild half a second after the last edit
//	quire watch --debounce 500ms
//
//	// Inspect configuration as JSON
//	quire config show --format json
package cmd
