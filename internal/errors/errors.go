// Package errors provides the structured error types used across navcheck.
//
// Two families live here. NavError is the typed error returned by fallible
// operations (configuration loading, scanning, selector compilation). The
// ErrorCollector accumulates per-file failures during a run: a file that cannot
// be read or decoded is recorded and excluded from analysis, and the run keeps
// going.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// FileError records a content file that could not be analysed.
type FileError struct {
	File    string `json:"file" yaml:"file"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface
func (fe FileError) Error() string {
	return fmt.Sprintf("%s: %s", fe.File, fe.Message)
}

// ErrorCollector collects per-file errors from concurrent workers.
type ErrorCollector struct {
	fileErrors []FileError
	mutex      sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		fileErrors: make([]FileError, 0),
	}
}

// AddFileError records err against file. The message of a NavError cause is
// preferred over the full chain so reports stay free of absolute paths.
func (ec *ErrorCollector) AddFileError(file string, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	var ne *NavError
	if errors.As(err, &ne) {
		msg = ne.Message
		if ne.Cause != nil {
			msg += ": " + causeMessage(ne.Cause)
		}
	}

	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.fileErrors = append(ec.fileErrors, FileError{File: file, Message: msg})
}

// FileErrors returns a copy of the recorded file errors sorted by file.
func (ec *ErrorCollector) FileErrors() []FileError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	result := make([]FileError, len(ec.fileErrors))
	copy(result, ec.fileErrors)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].File < result[j].File
	})

	return result
}

// causeMessage strips *fs.PathError style wrappers down to their innermost
// message so the machine-specific path does not leak into the report.
func causeMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
