package projects

import (
	"strings"

	"github.com/nhle/taskboard/internal/model"
)

// Filter keeps projects whose name or description contains term
// (case-insensitive) and, when status is set, whose status matches.
func Filter(projects []model.Project, term string, status model.ProjectStatus) []model.Project {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []model.Project
	for _, p := range projects {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	return out
}

// nextStatus cycles "" -> PLANNING -> ... -> CANCELLED -> "".
func nextStatus(s model.ProjectStatus) model.ProjectStatus {
	if s == "" {
		return model.ProjectStatuses[0]
	}
	for i, ps := range model.ProjectStatuses {
		if ps == s && i+1 < len(model.ProjectStatuses) {
			return model.ProjectStatuses[i+1]
		}
	}
	return ""
}
