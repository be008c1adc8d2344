// Package trailers implements the commit-message trailer rewriting algorithm
// used during history rewrites.
//
// A trailer is a "Token: value" metadata line conventionally placed at the end
// of a commit message (for example "Reviewed-by: R. Viewer <r@example.com>").
// Rewrite applies replace-by-token semantics: existing lines for the token are
// removed, duplicate trailer lines are collapsed, and the supplied values are
// appended as the final lines of the trailer block.
package trailers
