package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parthk/blockvault/pkg/client"
)

// barWidth is the rendered width of the upload progress bar.
const barWidth = 30

// progressMsg reports one completed block.
type progressMsg struct {
	done    int
	total   int
	blockID string
}

// finishMsg ends the program.
type finishMsg struct{}

// uploadModel is the bubbletea model for the upload progress bar.
type uploadModel struct {
	done    int
	total   int
	blockID string
}

func (m uploadModel) Init() tea.Cmd {
	return nil
}

func (m uploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.done = msg.done
		m.total = msg.total
		m.blockID = msg.blockID
		return m, nil
	case finishMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m uploadModel) View() string {
	if m.total == 0 {
		return StyleDim.Render("sealing blocks...")
	}

	filled := m.done * barWidth / m.total
	bar := StyleHighlight.Render(strings.Repeat("█", filled)) +
		StyleDim.Render(strings.Repeat("░", barWidth-filled))

	line := fmt.Sprintf("%s %s", bar, StyleValue.Render(fmt.Sprintf("%d/%d blocks", m.done, m.total)))
	if m.blockID != "" {
		line += StyleDim.Render("  " + m.blockID)
	}
	return line
}

// uploadProgress returns a client progress callback backed by a bubbletea
// progress bar, and a finish function that tears the bar down. With plain
// set (or no terminal), the bar is skipped and the callback is nil.
func uploadProgress(plain bool) (client.Progress, func(ok bool)) {
	if plain || !isTerminal() {
		return nil, func(bool) {}
	}

	p := tea.NewProgram(uploadModel{}, tea.WithOutput(os.Stderr))
	go func() {
		_, _ = p.Run()
	}()

	callback := func(done, total int, blockID string) {
		p.Send(progressMsg{done: done, total: total, blockID: blockID})
	}
	finish := func(bool) {
		p.Send(finishMsg{})
		p.Wait()
	}
	return callback, finish
}

func isTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
