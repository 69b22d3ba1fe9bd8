// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import (
	"fmt"
	"strings"

	"cf-worker-cli/internal/deploy"
)

func (m BulkModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🔄 Bulk deployment"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  run %s", m.summary.RunID)))
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString(fmt.Sprintf("  %d/%d\n\n", m.summary.Attempted, len(m.targets)))

	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch {
	case !m.done && m.current < len(m.targets):
		t := m.targets[m.current]
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(),
			statusStyle.Render(fmt.Sprintf("[%d/%d] Deploying %s to %s",
				m.current+1, len(m.targets), identifierColor.Render(t.WorkerName), t.Account.Email))))
		if m.stopping {
			b.WriteString(warnStyle.Render("Stopping after the current deployment...") + "\n")
		} else {
			b.WriteString("\n" + footerKeyStyle.Render(m.keys.Quit.Help().Key) + " " +
				footerDescStyle.Render(m.keys.Quit.Help().Desc) + "\n")
		}
	case m.done:
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(m.totals()))
		b.WriteString("\n")
	}

	return b.String()
}

func (m BulkModel) totals() string {
	s := m.summary
	text := fmt.Sprintf("%s  %s  %s",
		fmt.Sprintf("📊 Total: %d", s.Attempted),
		successStyle.Render(fmt.Sprintf("✅ Success: %d", s.Succeeded)),
		errorStyle.Render(fmt.Sprintf("❌ Failed: %d", s.Failed)))
	if s.Interrupted {
		text += "\n" + warnStyle.Render(fmt.Sprintf("⚠️  Stopped with %d of %d not attempted", s.Planned-s.Attempted, s.Planned))
	}
	return text
}

func resultLine(index, total int, t deploy.Target, r deploy.Result) string {
	prefix := fmt.Sprintf("[%d/%d] %s → %s", index, total, t.WorkerName, t.Account.Email)
	if r.Success {
		return successStyle.Render("✅ " + prefix)
	}
	return errorStyle.Render("❌ "+prefix) + dimStyle.Render(": "+r.Error)
}
