package convert

import (
	"fmt"
	"os"
)

// maxUnwrapDepth caps recursive unwrapping of nested result records.
const maxUnwrapDepth = 8

// NormalizeResult converts a technique's raw return value into one canonical
// artifact path. Accepted shapes: a bare path string, an *Outcome, or a
// record (map) with an "output_path" field — possibly nested, since adapted
// techniques have historically wrapped their own results. Anything else
// fails with *MalformedResultError.
//
// The returned path is additionally validated on disk: it must exist and be
// non-empty, otherwise *ArtifactMissingError is returned.
func NormalizeResult(raw any) (string, error) {
	path, err := unwrapResult(raw, 0)
	if err != nil {
		return "", err
	}
	if err := validateArtifact(path); err != nil {
		return "", err
	}
	return path, nil
}

func unwrapResult(raw any, depth int) (string, error) {
	if depth > maxUnwrapDepth {
		return "", &MalformedResultError{Shape: "nesting too deep"}
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", &MalformedResultError{Shape: "empty path string"}
		}
		return v, nil
	case *Outcome:
		if v == nil {
			return "", &MalformedResultError{Shape: "nil outcome"}
		}
		return unwrapResult(v.Path, depth+1)
	case Outcome:
		return unwrapResult(v.Path, depth+1)
	case map[string]any:
		inner, ok := v["output_path"]
		if !ok {
			return "", &MalformedResultError{Shape: "record without output_path"}
		}
		return unwrapResult(inner, depth+1)
	case nil:
		return "", &MalformedResultError{Shape: "nil result"}
	default:
		return "", &MalformedResultError{Shape: fmt.Sprintf("unsupported type %T", raw)}
	}
}

// resultWarnings extracts user-facing notices carried by a raw result value.
func resultWarnings(raw any) []string {
	switch v := raw.(type) {
	case *Outcome:
		if v != nil {
			return v.Warnings
		}
	case Outcome:
		return v.Warnings
	}
	return nil
}

// validateArtifact enforces the output contract: the file exists and is
// non-empty at the moment the result is returned.
func validateArtifact(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &ArtifactMissingError{Path: path}
	}
	if info.Size() == 0 {
		return &ArtifactMissingError{Path: path, Empty: true}
	}
	return nil
}
