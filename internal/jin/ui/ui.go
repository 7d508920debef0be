// Package ui renders CLI-facing status lines with a consistent color
// scheme, grounded on the teacher's own RenderAccent/RenderPass/RenderWarn
// call sites in cmd/bd (e.g. turso.go) built on
// github.com/charmbracelet/lipgloss.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RenderPass renders s in the success color.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn renders s in the warning color.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderErr renders s in the error color.
func RenderErr(s string) string { return errStyle.Render(s) }

// RenderAccent renders s in the accent color, for headings.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderDim renders s de-emphasized, for secondary detail lines.
func RenderDim(s string) string { return dimStyle.Render(s) }
