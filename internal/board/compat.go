package board

import "github.com/nhle/taskboard/internal/model"

// legacyStatus maps localized labels that older backend builds stored in
// the status field to canonical status keys.
var legacyStatus = map[string]model.TaskStatus{
	"Backlog":      model.StatusBacklog,
	"A Fazer":      model.StatusReadyToDevelop,
	"Em Progresso": model.StatusInProgress,
	"Em Revisão":   model.StatusInReview,
	"Concluído":    model.StatusDone,
}

// CanonicalStatus translates a legacy label to its status key. Anything
// not in the table, including unknown strings, passes through unchanged.
func CanonicalStatus(s model.TaskStatus) model.TaskStatus {
	if key, ok := legacyStatus[string(s)]; ok {
		return key
	}
	return s
}
