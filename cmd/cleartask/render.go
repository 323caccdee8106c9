package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"clearTask/internal/models/task"

	"github.com/charmbracelet/lipgloss"
)

const shortIDLen = 8

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Strikethrough(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

func renderTask(t task.Task, now time.Time) string {
	var b strings.Builder

	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	pin := " "
	if t.Pinned {
		pin = "*"
	}

	title := titleStyle.Render(t.Title)
	if t.Completed {
		title = doneStyle.Render(t.Title)
	}

	fmt.Fprintf(&b, "%s %s %s %s %s",
		mutedStyle.Render(shortID(t.ID)),
		mark,
		labelStyle.Render(pin),
		priorityStyles[t.Priority].Render(fmt.Sprintf("%-6s", t.Priority)),
		title,
	)

	if t.DueDate != nil {
		due := "due " + t.DueDate.Local().Format(dateLayout)
		if t.Overdue(now) {
			b.WriteString(" " + errorStyle.Render(due+" (overdue)"))
		} else {
			b.WriteString(" " + mutedStyle.Render(due))
		}
	}
	if t.Description != nil {
		b.WriteString("\n" + strings.Repeat(" ", shortIDLen+1) + mutedStyle.Render(*t.Description))
	}
	return b.String()
}

func renderList(tasks []task.Task, now time.Time) string {
	if len(tasks) == 0 {
		return mutedStyle.Render("No tasks") + "\n"
	}

	var b strings.Builder
	for _, t := range tasks {
		b.WriteString(renderTask(t, now))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderStats(st task.Stats) string {
	return fmt.Sprintf("%s %d  %s %d  %s %d",
		labelStyle.Render("total"), st.Total,
		labelStyle.Render("pending"), st.Pending,
		labelStyle.Render("completed"), st.Completed,
	)
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return fmt.Sprintf("%-*s", shortIDLen, id)
}

// printer shows store and session notifications on the terminal.
type printer struct {
	w io.Writer
}

func (p *printer) Success(msg string) {
	fmt.Fprintln(p.w, successStyle.Render(msg))
}

func (p *printer) Error(msg string) {
	fmt.Fprintln(p.w, errorStyle.Render(msg))
}
