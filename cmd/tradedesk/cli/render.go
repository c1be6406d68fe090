// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tradedesk/tradedesk/lib/daemonerr"
)

// Renderer formats errors for a terminal. Colors are applied only when
// the output supports them.
type Renderer struct {
	label  lipgloss.Style
	kind   lipgloss.Style
	detail lipgloss.Style
	hint   lipgloss.Style
}

// NewRenderer creates a renderer for output written to w.
func NewRenderer(w io.Writer) *Renderer {
	renderer := lipgloss.NewRenderer(w)
	return &Renderer{
		label:  renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		kind:   renderer.NewStyle().Bold(true),
		detail: renderer.NewStyle().Faint(true),
		hint:   renderer.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Error formats err as:
//
//	error: RISK_HALTED: trading is halted
//	  halted_by: operator
//	hint: Resume with 'tradedesk risk resume'.
func (r *Renderer) Error(err error) string {
	var builder strings.Builder
	builder.WriteString(r.label.Render("error:"))
	builder.WriteByte(' ')

	var daemonError *daemonerr.Error
	if !errors.As(err, &daemonError) {
		builder.WriteString(err.Error())
		builder.WriteByte('\n')
		return builder.String()
	}

	builder.WriteString(r.kind.Render(string(daemonError.Kind) + ":"))
	builder.WriteByte(' ')
	builder.WriteString(daemonError.Message)
	builder.WriteByte('\n')

	keys := make([]string, 0, len(daemonError.Details))
	for key := range daemonError.Details {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		builder.WriteString(r.detail.Render(fmt.Sprintf("  %s: %v", key, daemonError.Details[key])))
		builder.WriteByte('\n')
	}

	if hint := daemonError.Hint(); hint != "" {
		builder.WriteString(r.hint.Render("hint: " + hint))
		builder.WriteByte('\n')
	}
	return builder.String()
}

// RenderError writes err to w in the format of Renderer.Error.
func RenderError(w io.Writer, err error) {
	io.WriteString(w, NewRenderer(w).Error(err))
}
