package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/zoobzio/capitan"

	"github.com/san-kum/fmriviz/internal/events"
)

var (
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	eventStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// observe prints every scene event to stderr.
func observe() {
	for _, sig := range events.All {
		capitan.Hook(sig, func(_ context.Context, e *capitan.Event) {
			style := eventStyle
			if e.Signal() == events.LoadFailed {
				style = errorStyle
			}
			fmt.Fprintf(os.Stderr, "%s %s\n",
				timeStyle.Render(time.Now().Format("15:04:05.000")),
				style.Render(events.Format(e)),
			)
		})
	}
}
