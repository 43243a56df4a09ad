// Package fileproc runs the embarrassingly-parallel per-file pipeline
// stages on a bounded worker pool. Results come back in arbitrary order;
// callers re-sort before anything order-sensitive happens.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// FileError is an error tied to the file that produced it.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// FileErrors collects per-file errors across workers.
type FileErrors struct {
	Errors []FileError
	mu     sync.Mutex
}

// Add appends an error. Safe for concurrent use.
func (e *FileErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, FileError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors reports whether any errors were collected.
func (e *FileErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

func (e *FileErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier scales NumCPU into the worker count; lexing is a
// mix of I/O and CPU, so oversubscribing modestly pays off.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called once per processed file, success or not.
type ProgressFunc func()

// ErrorFunc receives per-file failures. When nil, failures are dropped.
type ErrorFunc func(path string, err error)

// ForEachFile processes files on the pool and collects the successful
// results in arbitrary order.
func ForEachFile[T any](files []string, fn func(string) (T, error)) []T {
	return ForEachFileN(files, 0, fn, nil, nil)
}

// ForEachFileN is ForEachFile with configurable worker count and progress
// and error callbacks. maxWorkers <= 0 uses the default.
func ForEachFileN[T any](files []string, maxWorkers int, fn func(string) (T, error), onProgress ProgressFunc, onError ErrorFunc) []T {
	if len(files) == 0 {
		return nil
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]T, 0, len(files))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for _, path := range files {
		p.Go(func() {
			result, err := fn(path)
			if onProgress != nil {
				defer onProgress()
			}
			if err != nil {
				if onError != nil {
					onError(path, err)
				}
				return
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	return results
}

// ForEachFileCtx processes files with context cancellation. Per-file errors
// never stop the pool; they are collected and returned alongside whatever
// results completed.
func ForEachFileCtx[T any](ctx context.Context, files []string, fn func(string) (T, error), onProgress ProgressFunc) ([]T, *FileErrors) {
	if len(files) == 0 {
		return nil, nil
	}
	maxWorkers := runtime.NumCPU() * DefaultWorkerMultiplier

	results := make([]T, 0, len(files))
	errs := &FileErrors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for _, path := range files {
		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				return ctx.Err()
			default:
			}

			result, err := fn(path)
			if onProgress != nil {
				defer onProgress()
			}
			if err != nil {
				errs.Add(path, err)
				return nil
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	_ = p.Wait() // context errors are already in errs

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
