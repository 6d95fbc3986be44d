package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/stats"
)

func sampleBoard() board.Board {
	tasks := []model.Task{
		{ID: 1, Title: "Escrever testes", Status: model.StatusBacklog, Priority: model.PriorityHigh},
		{ID: 2, Title: "Revisar PR", Status: "Em Revisão", Priority: model.PriorityLow},
		{ID: 3, Title: "Sumida", Status: "ARCHIVED"},
	}
	return board.DefaultLayout().Build(tasks)
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t,
		[]string{"login", "logout", "whoami", "board", "stats", "move", "projects", "mock-server"},
		names)
}

func TestMoveRejectsBadArguments(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	root.SetArgs([]string{"move", "abc", "DONE"})
	assert.ErrorContains(t, root.Execute(), "id de tarefa inválido")

	root.SetArgs([]string{"move", "4", "SHIPPED"})
	assert.ErrorContains(t, root.Execute(), "unknown task status")
}

func TestWriteBoardText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBoardText(&buf, sampleBoard()))

	out := buf.String()
	assert.Contains(t, out, "BACKLOG (1)")
	assert.Contains(t, out, "EM REVISÃO (1)")
	assert.Contains(t, out, "#2")
	assert.Contains(t, out, "1 tarefa(s) com status desconhecido")
	assert.NotContains(t, out, "Sumida")
}

func TestWriteBoardYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBoardYAML(&buf, sampleBoard()))

	var decoded struct {
		Columns []struct {
			Key   string `yaml:"key"`
			Tasks []struct {
				ID int64 `yaml:"id"`
			} `yaml:"tasks"`
		} `yaml:"columns"`
		Dropped int `yaml:"dropped"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	require.Len(t, decoded.Columns, 5)
	assert.Equal(t, "BACKLOG", decoded.Columns[0].Key)
	assert.Len(t, decoded.Columns[0].Tasks, 1)
	assert.Equal(t, "IN_REVIEW", decoded.Columns[3].Key)
	assert.Equal(t, int64(2), decoded.Columns[3].Tasks[0].ID)
	assert.Empty(t, decoded.Columns[4].Tasks)
	assert.Equal(t, 1, decoded.Dropped)
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	writeStats(&buf, stats.Summary{Total: 4, Completed: 1, InProgress: 2, Pending: 1}, stats.ProjectCounts{Total: 2, Active: 1})

	out := buf.String()
	assert.Contains(t, out, "Concluídas:    1 (25%)")
	assert.Contains(t, out, "Projetos:      2 (1 ativos)")
}
