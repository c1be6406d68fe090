// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"

	"github.com/tradedesk/tradedesk/lib/daemonerr"
)

// JSONOutput is embedded in a params struct to add --json.
//
//	type positionsParams struct {
//	    cli.JSONOutput
//	}
//
//	if done, err := params.EmitJSON(stdout, result); done {
//	    return err
//	}
//	// ... text formatting ...
type JSONOutput struct {
	OutputJSON bool `flag:"json" desc:"output as JSON"`
}

// EmitJSON writes result as indented JSON to w if --json is set and
// reports whether it did. Nil slices are written as [].
func (j *JSONOutput) EmitJSON(w io.Writer, result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, WriteJSON(w, normalizeNilSlice(result))
}

// WriteJSON writes value as indented JSON.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// ErrorObject is the JSON shape of a failed command under --json. It
// mirrors the daemon's error payload so scripts can handle both alike.
type ErrorObject struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details"`
	Suggestion string         `json:"suggestion,omitempty"`
	ExitCode   int            `json:"exit_code"`
}

// NewErrorObject describes err for JSON output. Errors that carry no
// daemon kind are reported as INTERNAL_ERROR.
func NewErrorObject(err error) ErrorObject {
	var daemonError *daemonerr.Error
	if errors.As(err, &daemonError) {
		details := daemonError.Details
		if details == nil {
			details = map[string]any{}
		}
		return ErrorObject{
			Code:       string(daemonError.Kind),
			Message:    daemonError.Message,
			Details:    details,
			Suggestion: daemonError.Hint(),
			ExitCode:   ExitCode(err),
		}
	}
	return ErrorObject{
		Code:     string(daemonerr.InternalError),
		Message:  err.Error(),
		Details:  map[string]any{},
		ExitCode: ExitCode(err),
	}
}

func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
