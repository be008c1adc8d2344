// Package landing drives the fixed merge-landing sequence: clone the remote,
// configure the committer identity, rebase the source branch onto the target,
// install review trailers across the rebased commits, and force-push the
// result. The decision of which change to land belongs to the caller; the
// service only executes the mechanics and stops at the first failing step.
package landing
