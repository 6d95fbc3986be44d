package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/nhle/taskboard/internal/ui"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  tea.Msg
	}{
		{"#12", ui.OpenTaskMsg{ID: 12}},
		{"12", ui.OpenTaskMsg{ID: 12}},
		{" t 4 ", ui.OpenTaskMsg{ID: 4}},
		{"tarefa 4", ui.OpenTaskMsg{ID: 4}},
		{"P 3", ui.OpenProjectMsg{ID: 3}},
		{"k 3", ui.OpenBoardMsg{ProjectID: 3}},
		{"kanban 0", ui.OpenBoardMsg{ProjectID: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, input := range []string{"", "abc", "#x", "t 0", "p -1", "z 3", "t 1 2"} {
		_, err := Parse(input)
		assert.Error(t, err, input)
	}
}

func TestEnterEmitsNavigation(t *testing.T) {
	m := New(80, 20)
	m.Focus()
	m.input.SetValue("p 7")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.input.Value())
	assert.Equal(t, ui.OpenProjectMsg{ID: 7}, cmd())
}

func TestInvalidCommandStaysOpen(t *testing.T) {
	m := New(80, 20)
	m.input.SetValue("xyz")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "xyz", m.input.Value())
	assert.Contains(t, m.View(), "comando inválido")
}
