// logger.go
// Package tmsimilarity provides shared utilities for the go_tm_similarity package.
package tmsimilarity

import (
	"io"

	"github.com/baditaflorin/l"
)

// createDefaultLogger creates the logger used by the package-level helpers.
// They sit on interactive lookup paths, so output is discarded.
func createDefaultLogger() (l.Logger, error) {
	return l.NewStandardFactory().CreateLogger(l.Config{
		Output:     io.Discard,
		JsonFormat: false,
		AddSource:  false,
	})
}
