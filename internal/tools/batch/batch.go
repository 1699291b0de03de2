package batch

import (
	"context"
	"encoding/json"
	"fmt"
)

// Result is the outcome of a single item in a batch operation.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "success" or "error"
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult aggregates the per-item outcomes of a batch operation. Every
// input item appears exactly once in Results, whether it succeeded or not.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// PartiallyFailed reports whether some, but not all, items failed.
func (br *BatchResult) PartiallyFailed() bool {
	return br.Failed > 0 && br.Successful > 0
}

// ParseStringOrArray parses a tool argument that accepts either a single
// string or an array of strings.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		result = []string{v}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}

// Process executes fn on each id in order and collects one Result per id.
// Item failures never abort the batch; a cancelled context marks the
// remaining items as errors without calling fn.
func Process(ctx context.Context, ids []string, fn func(id string) (string, error)) *BatchResult {
	br := &BatchResult{
		Total:   len(ids),
		Results: make([]Result, 0, len(ids)),
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			br.Failed++
			br.Results = append(br.Results, NewErrorResult(id, err))
			continue
		}

		res, err := fn(id)
		if err != nil {
			br.Failed++
			br.Results = append(br.Results, NewErrorResult(id, err))
		} else {
			br.Successful++
			br.Results = append(br.Results, NewSuccessResult(id, res))
		}
	}

	return br
}

// Format renders a batch result as a summary line followed by indented JSON.
func (br *BatchResult) Format() string {
	jsonBytes, _ := json.MarshalIndent(br, "", "  ")
	return fmt.Sprintf("Batch complete: %d succeeded, %d failed out of %d\n%s",
		br.Successful, br.Failed, br.Total, string(jsonBytes))
}

// NewSuccessResult creates a success result.
func NewSuccessResult(id, message string) Result {
	return Result{
		ID:     id,
		Status: "success",
		Result: message,
	}
}

// NewErrorResult creates an error result.
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: "error",
		Error:  err.Error(),
	}
}
