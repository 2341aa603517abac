package views

import (
	"fmt"
	"strings"

	"jp2mi/internal/mode"
	"jp2mi/internal/tui/common"
	"jp2mi/internal/tui/styles"
)

// RenderMainView draws the input, every control row with its emphasis, the
// prompt and the status line.
func RenderMainView(m common.ModelReader, status string) string {
	var sb strings.Builder

	sb.WriteString(styles.Theme.Title.Render("JPEG2000 MI"))
	sb.WriteString("\n")
	sb.WriteString(renderSelection(m))
	sb.WriteString("\n\n")

	for i, row := range m.Rows() {
		if row.Group == mode.FileFormat || row.Group == mode.DecompressRGBProfile {
			sb.WriteString("\n")
		}
		sb.WriteString(renderRow(row, i == m.Cursor()))
		sb.WriteString("\n")
	}

	if label, view, active := m.Prompt(); active {
		sb.WriteString("\n" + styles.Theme.Focused.Render(label+": ") + view + "\n")
	}
	if status != "" {
		sb.WriteString("\n" + status + "\n")
	}

	if m.ShowHelp() {
		sb.WriteString("\n" + RenderHelp())
	}
	sb.WriteString("\n" + RenderKeyCommands())

	return styles.Theme.App.Render(sb.String())
}

func renderSelection(m common.ModelReader) string {
	sel := m.Selection()
	input := sel.Input()
	if input == "" {
		input = styles.Theme.Dimmed.Render("(none selected)")
	}
	s := fmt.Sprintf("Input: %s  [%s]", input, m.Mode())
	switch m.Mode() {
	case mode.CompressReady:
		if sel.CompressOutput != "" {
			s += "\nOutput: " + sel.CompressOutput
		}
	case mode.DecompressReady:
		if sel.DecompressOutput != "" {
			s += "\nOutput: " + sel.DecompressOutput
		}
	}
	return s
}

func renderRow(row common.Row, focused bool) string {
	cursor := "  "
	if focused {
		cursor = "> "
	}

	text := fmt.Sprintf("%-22s %s", row.Label, row.Value)
	if row.Kind == common.ActionRow {
		text = "[" + row.Label + "]"
	}

	switch {
	case !row.State.Enabled || row.State.Emphasis == mode.Dimmed:
		return cursor + styles.Theme.Dimmed.Render(text)
	case focused:
		return cursor + styles.Theme.Focused.Render(text)
	default:
		return cursor + styles.Theme.Full.Render(text)
	}
}

func RenderKeyCommands() string {
	return styles.Theme.Help.Render(
		"[o] Open  [↑/k ↓/j] Move  [←/h →/l] Change  [x] Clear  [Enter] Run  [?] Help  [q] Quit",
	)
}

func RenderHelp() string {
	return styles.Theme.Help.Render(`Open a .bmp image to compress it, or a JPEG 2000 file to decompress it.
Only the controls for the current mode can be focused. Choices cycle with
left/right; [x] clears a choice. Enter on Compress or Decompress asks for the
output file and starts the codec. The show buttons unlock once the output exists.`)
}
