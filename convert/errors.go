package convert

import (
	"fmt"
	"strings"
)

// NotSupportedError is returned when no strategy is registered for a format
// pair. It is surfaced directly to the caller and never retried.
type NotSupportedError struct {
	From string
	To   string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("convert: conversion from %q to %q is not supported", e.From, e.To)
}

// AttemptFailure records why one technique in a chain failed.
type AttemptFailure struct {
	Technique string `json:"technique"`
	Reason    string `json:"reason"`
}

// AllTechniquesFailedError is returned when every technique in a strategy's
// chain failed. Attempts preserves the per-technique failure reasons in the
// order they were tried — this is the most diagnostically important error in
// the system and must not discard detail.
type AllTechniquesFailedError struct {
	Strategy string
	Attempts []AttemptFailure
}

func (e *AllTechniquesFailedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "convert: all %d techniques failed for %s:", len(e.Attempts), e.Strategy)
	for _, a := range e.Attempts {
		fmt.Fprintf(&sb, "\n  %s: %s", a.Technique, a.Reason)
	}
	return sb.String()
}

// MalformedResultError is returned by NormalizeResult when a technique's raw
// return value does not bottom out in a usable path string. Inside a chain it
// is treated as that technique's failure, not a job abort.
type MalformedResultError struct {
	Shape string
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("convert: technique returned an unusable result shape: %s", e.Shape)
}

// ArtifactMissingError is returned when a technique reported success but its
// artifact does not exist or is zero-length on disk. Treated identically to a
// technique failure.
type ArtifactMissingError struct {
	Path  string
	Empty bool
}

func (e *ArtifactMissingError) Error() string {
	if e.Empty {
		return fmt.Sprintf("convert: artifact is empty: %s", e.Path)
	}
	return fmt.Sprintf("convert: artifact does not exist: %s", e.Path)
}
