// Package ui renders command lifecycle events for human-readable output.
package ui
