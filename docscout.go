// Package docscout discovers and extracts documentation content from a
// single starting URL, either a documentation site or a GitHub repository,
// and segments every page into titled sections for downstream indexing.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, colly/, goquery/, sqlite/).
package docscout
