package ui

// Navigation requests sent by views to the root model.
type (
	// BackMsg returns to the previous view.
	BackMsg struct{}

	// OpenProjectMsg opens the project detail view.
	OpenProjectMsg struct{ ID int64 }

	// OpenTaskMsg opens the task detail view.
	OpenTaskMsg struct{ ID int64 }

	// OpenBoardMsg opens the board filtered to ProjectID (0 for all).
	OpenBoardMsg struct{ ProjectID int64 }

	// ChangedMsg reports that a view modified backend data, so cached
	// aggregates elsewhere should be refreshed.
	ChangedMsg struct{}
)
