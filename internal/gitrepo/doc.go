// Package gitrepo exposes a Repository handle for operating one clone of a
// remote git repository through the external git binary.
//
// The handle is an immutable value: remote URL, local working directory, and
// optional SSH key file are fixed at construction, and WithSSHKeyFile returns
// a modified copy. Every operation is expressed as one or more execshell
// invocations bound to the clone's working directory. Contract violations
// (rebasing a branch onto itself, deleting the protected branch) are rejected
// before any external command is issued and carry a distinct error type from
// operational git failures.
package gitrepo
