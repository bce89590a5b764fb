package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ralt/mhwd/internal/models"
)

type styles struct {
	header  lipgloss.Style
	name    lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	warn    lipgloss.Style
	errHead lipgloss.Style
	hint    lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}

	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		name: lipgloss.NewStyle().
			Bold(true),
		label: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")),
		value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		warn: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		errHead: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Italic(true),
	}
}

// remediation tells the user what to do about each error category
var remediation = map[models.ErrorType]string{
	models.ErrParse:            "Fix the descriptor file named above.",
	models.ErrNotFound:         "Run 'mhwd list --available' to see the configs of this bus.",
	models.ErrInvalidPath:      "Check the catalog directories in the settings file.",
	models.ErrAlreadyInstalled: "Nothing to do. Remove the config first to reinstall it.",
	models.ErrNotInstalled:     "Run 'mhwd list --installed' to see the installed configs.",
	models.ErrHasConflicts:     "Remove the conflicting configs first, or pass --force.",
	models.ErrRequiredByOthers: "Remove the configs depending on it first.",
	models.ErrDatabase:         "The package database is busy or damaged. Retry once other package operations finish.",
	models.ErrInvalidConfig:    "Check the settings file and the command line flags.",
	models.ErrFileOp:           "Check that the path exists and is writable.",
}

// RenderError formats err for the terminal with a remediation hint
func RenderError(err error, noColor bool) string {
	st := newStyles(noColor)

	var sb strings.Builder
	var me *models.MhwdError
	if !errors.As(err, &me) {
		sb.WriteString(st.errHead.Render("Error: "))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(st.errHead.Render(fmt.Sprintf("Error [%s]: ", me.Type)))
	if me.Config != "" {
		sb.WriteString(st.name.Render(me.Config))
		sb.WriteString(": ")
	}
	if me.Path != "" {
		sb.WriteString(me.Path)
		sb.WriteString(": ")
	}
	if me.Err != nil {
		sb.WriteString(me.Err.Error())
	}
	sb.WriteString("\n")

	for _, name := range me.Names {
		sb.WriteString(st.value.Render("  - " + name))
		sb.WriteString("\n")
	}

	if hint, ok := remediation[me.Type]; ok {
		sb.WriteString(st.hint.Render(hint))
		sb.WriteString("\n")
	}

	return sb.String()
}

// NoColor reports whether --no-color was passed in args
func NoColor(args []string) bool {
	for _, arg := range args {
		if arg == "--no-color" || arg == "--no-color=true" {
			return true
		}
	}
	return false
}
