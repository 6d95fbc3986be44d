package model

// Display labels in the backend's locale (pt-BR). Keys are the canonical
// representation everywhere else; these are for rendering only.

// Label returns the display label for a task status. Unknown statuses
// render as-is.
func (s TaskStatus) Label() string {
	switch s {
	case StatusBacklog:
		return "Backlog"
	case StatusReadyToDevelop:
		return "Pronto"
	case StatusInProgress:
		return "Em Progresso"
	case StatusInReview:
		return "Em Revisão"
	case StatusDone:
		return "Concluído"
	default:
		return string(s)
	}
}

// Label returns the display label for a priority. Unknown priorities
// render as the medium label.
func (p TaskPriority) Label() string {
	switch p {
	case PriorityLow:
		return "Baixa"
	case PriorityHigh:
		return "Alta"
	case PriorityUrgent:
		return "Urgente"
	default:
		return "Média"
	}
}

// Label returns the display label for a project status.
func (s ProjectStatus) Label() string {
	switch s {
	case ProjectPlanning:
		return "Planejamento"
	case ProjectActive:
		return "Ativo"
	case ProjectOnHold:
		return "Em Espera"
	case ProjectCompleted:
		return "Concluído"
	case ProjectCancelled:
		return "Cancelado"
	default:
		return string(s)
	}
}
