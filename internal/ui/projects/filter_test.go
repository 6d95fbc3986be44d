package projects

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/taskboard/internal/model"
)

func TestFilter(t *testing.T) {
	projects := []model.Project{
		{ID: 1, Name: "Site institucional", Description: "Novo site", Status: model.ProjectActive},
		{ID: 2, Name: "App mobile", Description: "Versão iOS do SITE", Status: model.ProjectPlanning},
		{ID: 3, Name: "Migração", Description: "Banco de dados", Status: model.ProjectActive},
	}

	ids := func(ps []model.Project) []int64 {
		var out []int64
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		term   string
		status model.ProjectStatus
		want   []int64
	}{
		{"no filter", "", "", []int64{1, 2, 3}},
		{"name or description ignoring case", "site", "", []int64{1, 2}},
		{"surrounding blanks", "  migra ", "", []int64{3}},
		{"status only", "", model.ProjectActive, []int64{1, 3}},
		{"term and status", "site", model.ProjectPlanning, []int64{2}},
		{"no match", "xyz", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(projects, tt.term, tt.status)))
		})
	}
}

func TestNextStatusCycles(t *testing.T) {
	s := model.ProjectStatus("")
	seen := []model.ProjectStatus{}
	for range len(model.ProjectStatuses) + 1 {
		s = nextStatus(s)
		seen = append(seen, s)
	}
	assert.Equal(t, model.ProjectStatuses, seen[:len(model.ProjectStatuses)])
	assert.Equal(t, model.ProjectStatus(""), seen[len(seen)-1])
}
