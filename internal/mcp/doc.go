// Package mcp exposes the package index over the Model Context Protocol using
// mcp-go (github.com/mark3labs/mcp-go).
//
// # Tools
//
// Every tool takes string arguments and answers with a text result:
//
//	get_package              package_name
//	list_packages            category?, type?
//	search_packages          query
//	find_trait_usages        trait_name
//	get_model_relationships  model_name
//	audit_package            package_name
//	compare_packages         package1, package2
//	package_health           package_name
//	get_test_coverage        package_name
//	reload_index
//
// get_package, list_packages and get_model_relationships answer with JSON;
// the rest with a plain-text report. An unknown package or model is an
// ordinary result ("Package 'x' not found"), not a tool error. Tool errors
// are reserved for missing arguments and for an index that cannot be built.
//
// # Resources
//
// Each indexed package is published as package://<category>/<name> with its
// full description as JSON, and the same URIs resolve through the
// package://{category}/{name} template.
//
// # Loading
//
// The index is populated lazily by the first request that needs it (or
// eagerly by Start). After that it only changes through reload_index.
//
// The server speaks JSON-RPC 2.0 over stdin/stdout:
//
//	monoscope serve --root /path/to/monorepo
package mcp
