// Package jsonx turns free-form model output into typed values.
//
// Models prepend prose, wrap answers in code fences or trail commentary after
// the object. Extract finds the first balanced object; Decode unmarshals it and
// runs struct validation so callers get either a typed value or a typed error.
package jsonx

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNoJSON means the text holds no balanced JSON object.
var ErrNoJSON = errors.New("jsonx: no json object found")

// ValidationError wraps a decoded value that failed its schema tags.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "jsonx: schema validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var validate = validator.New()

// Extract returns the first balanced {...} substring. Braces inside JSON
// strings are ignored.
func Extract(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	for start >= 0 {
		if end := matchBrace(raw, start); end > 0 {
			return raw[start : end+1], nil
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSON
}

func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Decode extracts the first object from raw, unmarshals it into v and
// validates v's struct tags.
func Decode(raw string, v interface{}) error {
	obj, err := Extract(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("jsonx: decode: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// Not a struct (maps); nothing to validate.
			return nil
		}
		return &ValidationError{Err: err}
	}
	return nil
}
