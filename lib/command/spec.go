// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Spec describes one daemon command with params type P and result type
// R. Specs are declared as package-level variables with Define.
type Spec[P, R any] struct {
	name    string
	summary string
	stream  bool
}

// Name returns the dotted command name sent on the wire.
func (s Spec[P, R]) Name() string { return s.name }

// Summary returns the one-line description.
func (s Spec[P, R]) Summary() string { return s.summary }

// Stream reports whether the command opens a subscription.
func (s Spec[P, R]) Stream() bool { return s.stream }

// Info is the type-erased registry entry for a Spec.
type Info struct {
	Name    string
	Summary string
	Stream  bool
	Params  reflect.Type
	Result  reflect.Type
}

// Namespace returns the part of the name before the first dot.
func (i Info) Namespace() string {
	namespace, _, _ := strings.Cut(i.Name, ".")
	return namespace
}

var registry = make(map[string]Info)

// Define declares a command and adds it to the registry. Panics on a
// malformed or duplicate name; definitions are package-level variables,
// so both are programming errors caught at init.
func Define[P, R any](name, summary string) Spec[P, R] {
	return define[P, R](name, summary, false)
}

// DefineStream declares a subscription command.
func DefineStream[P, R any](name, summary string) Spec[P, R] {
	return define[P, R](name, summary, true)
}

func define[P, R any](name, summary string, stream bool) Spec[P, R] {
	if err := ValidateName(name); err != nil {
		panic(fmt.Sprintf("command.Define: %v", err))
	}
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("command.Define: duplicate command %q", name))
	}
	registry[name] = Info{
		Name:    name,
		Summary: summary,
		Stream:  stream,
		Params:  reflect.TypeFor[P](),
		Result:  reflect.TypeFor[R](),
	}
	return Spec[P, R]{name: name, summary: summary, stream: stream}
}

// ValidateName checks that name is a dotted, lowercase command name
// with at least two segments, such as "order.place".
func ValidateName(name string) error {
	segments := strings.Split(name, ".")
	if len(segments) < 2 {
		return fmt.Errorf("command name %q must be namespace.action", name)
	}
	for _, segment := range segments {
		if segment == "" {
			return fmt.Errorf("command name %q has an empty segment", name)
		}
		for _, r := range segment {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
				return fmt.Errorf("command name %q contains %q", name, r)
			}
		}
	}
	return nil
}

// Lookup returns the registry entry for name.
func Lookup(name string) (Info, bool) {
	info, ok := registry[name]
	return info, ok
}

// All returns every registered command sorted by name.
func All() []Info {
	infos := make([]Info, 0, len(registry))
	for _, info := range registry {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
