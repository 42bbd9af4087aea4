// Package agent decodes action-group tool events and builds their replies.
package agent

import (
	"encoding/json"
	"fmt"
)

const mediaJSON = "application/json"

// Event is an action-group tool invocation.
type Event struct {
	MessageVersion string          `json:"messageVersion"`
	ActionGroup    string          `json:"actionGroup"`
	APIPath        string          `json:"apiPath"`
	HTTPMethod     string          `json:"httpMethod"`
	Parameters     []Property      `json:"parameters"`
	RequestBody    json.RawMessage `json:"requestBody,omitempty"`

	keys map[string]struct{}
}

// Property is one named, typed tool argument.
type Property struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Decode parses raw into an Event. Any JSON object is accepted; use
// IsAgentEvent to tell tool invocations from other payloads.
func Decode(raw []byte) (*Event, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("agent: decode event: %w", err)
	}
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("agent: decode event: %w", err)
	}
	ev.keys = make(map[string]struct{}, len(keys))
	for k := range keys {
		ev.keys[k] = struct{}{}
	}
	return &ev, nil
}

// IsAgentEvent reports whether the payload carried both messageVersion and actionGroup.
func IsAgentEvent(ev *Event) bool {
	if ev == nil {
		return false
	}
	if ev.keys != nil {
		_, hasVersion := ev.keys["messageVersion"]
		_, hasGroup := ev.keys["actionGroup"]
		return hasVersion && hasGroup
	}
	return ev.MessageVersion != "" && ev.ActionGroup != ""
}

// Body returns the request body arguments. Both requestBody.content
// ["application/json"] and the older requestBody["application/json"] are
// read; a properties list is coerced by declared type, a plain object is
// returned as is.
func (e *Event) Body() Params {
	if len(e.RequestBody) == 0 {
		return Params{}
	}
	var rb struct {
		Content map[string]json.RawMessage `json:"content"`
		Legacy  json.RawMessage            `json:"application/json"`
	}
	if err := json.Unmarshal(e.RequestBody, &rb); err != nil {
		return Params{}
	}
	if media, ok := rb.Content[mediaJSON]; ok {
		if p, ok := decodeMedia(media); ok {
			return p
		}
	}
	if len(rb.Legacy) > 0 {
		if p, ok := decodeMedia(rb.Legacy); ok {
			return p
		}
	}
	return Params{}
}

// Params merges the body arguments with the top-level parameters list.
// Body values win.
func (e *Event) Params() Params {
	out := e.Body()
	for k, v := range fromProperties(e.Parameters) {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

func decodeMedia(raw json.RawMessage) (Params, bool) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	list, ok := obj["properties"].([]any)
	if !ok {
		return Params(obj), true
	}
	props := make([]Property, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		typ, _ := m["type"].(string)
		props = append(props, Property{Name: name, Type: typ, Value: m["value"]})
	}
	return fromProperties(props), true
}

func fromProperties(props []Property) Params {
	out := make(Params, len(props))
	for _, p := range props {
		if p.Name == "" {
			continue
		}
		out[p.Name] = coerce(p.Type, p.Value)
	}
	return out
}
