// Package execshell provides structured helpers for invoking the git binary.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions autoland uses to run
// git in a testable manner. Non-zero exits surface as CommandFailedError so
// callers can inspect the failed invocation and its captured output.
package execshell
