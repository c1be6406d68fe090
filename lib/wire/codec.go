// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"

	"github.com/tradedesk/tradedesk/lib/codec"
	"github.com/tradedesk/tradedesk/lib/daemonerr"
)

const (
	invalidRequest  = "invalid request payload"
	invalidResponse = "invalid response payload"
	invalidEvent    = "invalid event payload"
)

// EncodeRequest serializes a request envelope. Nil params are sent as
// an empty map so the daemon always sees a map.
func EncodeRequest(request Request) ([]byte, error) {
	if request.Params == nil {
		request.Params = map[string]any{}
	}
	data, err := codec.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", request.Command, err)
	}
	return data, nil
}

// DecodeResponse parses a response envelope. The payload must be a
// map; request_id is coerced to a string and ok to a boolean. An
// ok=false response always comes back with a non-nil Error (an empty
// ErrorPayload if the daemon sent none or sent garbage) so callers can
// map it without a nil check.
func DecodeResponse(payload []byte) (*Response, error) {
	fields, err := decodeMap(payload, invalidResponse)
	if err != nil {
		return nil, err
	}

	response := &Response{
		RequestID: coerceString(decodeAny(fields["request_id"])),
		OK:        coerceBool(decodeAny(fields["ok"])),
	}
	if raw, present := fields["data"]; present && !isNull(raw) {
		response.Data = raw
	}
	if raw, present := fields["error"]; present && !isNull(raw) {
		response.Error = decodeErrorPayload(raw)
	}
	if !response.OK {
		if response.Error == nil {
			response.Error = &ErrorPayload{Details: map[string]any{}}
		}
	} else {
		response.Error = nil
	}
	return response, nil
}

// DecodeEvent parses an event envelope. A missing topic decodes as ""
// and missing or null data as an empty map; data of any other non-map
// shape is rejected.
func DecodeEvent(payload []byte) (*Event, error) {
	fields, err := decodeMap(payload, invalidEvent)
	if err != nil {
		return nil, err
	}

	event := &Event{
		RequestID: coerceString(decodeAny(fields["request_id"])),
		Topic:     coerceString(decodeAny(fields["topic"])),
		Data:      map[string]any{},
	}
	if raw, present := fields["data"]; present && !isNull(raw) {
		data, ok := decodeAny(raw).(map[string]any)
		if !ok {
			return nil, daemonerr.Internal(invalidEvent, fmt.Errorf("data is not a map"))
		}
		event.Data = data
	}
	return event, nil
}

// DecodeRequest parses a request envelope on the daemon side. The
// params value is returned raw so the handler can decode it into its
// own parameter type.
func DecodeRequest(payload []byte) (*Request, codec.RawMessage, error) {
	fields, err := decodeMap(payload, invalidRequest)
	if err != nil {
		return nil, nil, err
	}

	request := &Request{
		RequestID: coerceString(decodeAny(fields["request_id"])),
		Command:   coerceString(decodeAny(fields["command"])),
		Stream:    coerceBool(decodeAny(fields["stream"])),
		Source:    coerceString(decodeAny(fields["source"])),
	}
	params := fields["params"]
	if params == nil || isNull(params) {
		params, _ = codec.Marshal(map[string]any{})
	}
	request.Params = params
	return request, params, nil
}

// EncodeResponse serializes a response envelope on the daemon side.
// Data is marshaled into the envelope's data field; a nil result
// omits it.
func EncodeResponse(requestID string, result any) ([]byte, error) {
	response := Response{RequestID: requestID, OK: true}
	if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encoding response data: %w", err)
		}
		response.Data = data
	}
	return codec.Marshal(response)
}

// EncodeErrorResponse serializes an ok=false response for err.
func EncodeErrorResponse(requestID string, err *daemonerr.Error) ([]byte, error) {
	details := err.Details
	if details == nil {
		details = map[string]any{}
	}
	return codec.Marshal(Response{
		RequestID: requestID,
		OK:        false,
		Error: &ErrorPayload{
			Code:       string(err.Kind),
			Message:    err.Message,
			Details:    details,
			Suggestion: err.Suggestion,
		},
	})
}

// EncodeEvent serializes an event envelope on the daemon side.
func EncodeEvent(event Event) ([]byte, error) {
	if event.Data == nil {
		event.Data = map[string]any{}
	}
	return codec.Marshal(event)
}

// MapError converts an ok=false response into the client-side error.
// It returns nil for ok=true responses.
func (r *Response) MapError() *daemonerr.Error {
	if r.OK {
		return nil
	}
	payload := r.Error
	if payload == nil {
		payload = &ErrorPayload{}
	}
	mapped := daemonerr.FromResponse(payload.Code, payload.Message, payload.Details, payload.Suggestion)
	if r.RequestID != "" {
		mapped.WithDetail("request_id", r.RequestID)
	}
	return mapped
}

func decodeMap(payload []byte, message string) (map[string]codec.RawMessage, error) {
	var fields map[string]codec.RawMessage
	if err := codec.Unmarshal(payload, &fields); err != nil {
		return nil, daemonerr.Internal(message, err)
	}
	if fields == nil {
		// A CBOR null decodes into a nil map without error.
		return nil, daemonerr.Internal(message, fmt.Errorf("payload is null"))
	}
	return fields, nil
}

func decodeErrorPayload(raw codec.RawMessage) *ErrorPayload {
	payload := &ErrorPayload{Details: map[string]any{}}
	fields, ok := decodeAny(raw).(map[string]any)
	if !ok {
		return payload
	}
	payload.Code = coerceString(fields["code"])
	payload.Message = coerceString(fields["message"])
	payload.Suggestion = coerceString(fields["suggestion"])
	if details, ok := fields["details"].(map[string]any); ok {
		payload.Details = details
	}
	return payload
}

// decodeAny decodes a raw field into a generic value. An absent field
// (nil raw) or an undecodable one yields nil.
func decodeAny(raw codec.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var value any
	if err := codec.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return value
}

// isNull reports whether raw is the CBOR null or undefined simple value.
func isNull(raw codec.RawMessage) bool {
	return len(raw) == 1 && (raw[0] == 0xf6 || raw[0] == 0xf7)
}

func coerceString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []byte:
		return string(typed)
	default:
		return fmt.Sprint(typed)
	}
}

func coerceBool(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case uint64:
		return typed != 0
	case int64:
		return typed != 0
	case float64:
		return typed != 0
	case float32:
		return typed != 0
	default:
		return true
	}
}
