package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidKey covers every credential rejection: unknown, wrong secret,
// inactive, expired. Callers must not be able to tell these apart.
var ErrInvalidKey = errors.New("invalid or expired api key")

// ValidationError carries field-level messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors accumulates validation failures before turning them into a
// single ValidationError.
type fieldErrors map[string]string

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
