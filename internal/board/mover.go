package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/model"
)

var (
	// ErrInvalidTarget is returned when the target column does not exist,
	// or when a card would move into the overflow column from another one.
	ErrInvalidTarget = errors.New("invalid drop target")

	// ErrInvalidIndex is returned when the source column or source index is
	// out of range.
	ErrInvalidIndex = errors.New("invalid drop index")

	// ErrTaskMismatch is returned when the task at the source index is not
	// the task being dragged.
	ErrTaskMismatch = errors.New("task not found at source index")

	// ErrDropInFlight is returned while a cross-column move is still
	// waiting for the backend.
	ErrDropInFlight = errors.New("another move is in progress")
)

// StatusUpdater sets a task's status on the backend and returns the
// updated task.
type StatusUpdater interface {
	UpdateTaskStatus(ctx context.Context, taskID int64, status model.TaskStatus) (model.Task, error)
}

// Reloader performs a full load.
type Reloader interface {
	LoadAll(ctx context.Context) (Snapshot, error)
}

// Drop describes a completed drag gesture. Source and Target are column
// positions on the current board.
type Drop struct {
	Source      int
	Target      int
	SourceIndex int
	TargetIndex int
	TaskID      int64
}

// Pending is a cross-column move that has been applied locally and still
// needs the backend's confirmation.
type Pending struct {
	TaskID int64
	Status model.TaskStatus
	From   model.TaskStatus
}

// Settlement is the outcome of a settled cross-column move.
type Settlement struct {
	Board Board

	// Task is the backend's copy of the moved task after a successful move.
	Task *model.Task

	// Reload is the snapshot the board was rebuilt from after a rejected
	// move. It is nil when the move succeeded or the reload failed.
	Reload *Snapshot
}

// Mover owns the board shown to the user and applies drag gestures to it.
// At most one cross-column move is in flight at a time.
type Mover struct {
	mu       sync.Mutex
	layout   Layout
	board    Board
	pending  *Pending
	updater  StatusUpdater
	reloader Reloader
}

// NewMover creates a Mover with an empty board built from layout.
func NewMover(layout Layout, updater StatusUpdater, reloader Reloader) *Mover {
	return &Mover{
		layout:   layout,
		board:    layout.Build(nil),
		updater:  updater,
		reloader: reloader,
	}
}

// Board returns a copy of the current board.
func (m *Mover) Board() Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.clone()
}

// Layout returns the layout boards are built with.
func (m *Mover) Layout() Layout {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layout
}

// SetLayout changes the layout and rebuilds the board from the tasks it
// currently holds.
func (m *Mover) SetLayout(layout Layout, tasks []model.Task) Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layout = layout
	m.board = layout.Build(tasks)
	return m.board.clone()
}

// Replace discards the local state and rebuilds the board from a fresh
// task list.
func (m *Mover) Replace(tasks []model.Task) Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.board = m.layout.Build(tasks)
	return m.board.clone()
}

// InFlight reports whether a cross-column move awaits the backend.
func (m *Mover) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// Apply performs the local half of a drop. A reorder within one column
// returns a nil Pending; a cross-column move returns the remote call the
// caller must make before calling Commit or Fail. On error the board is
// unchanged.
func (m *Mover) Apply(d Drop) (*Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending != nil {
		return nil, ErrDropInFlight
	}
	cols := m.board.Columns
	if d.Source < 0 || d.Source >= len(cols) {
		return nil, fmt.Errorf("%w: column %d", ErrInvalidIndex, d.Source)
	}
	if d.Target < 0 || d.Target >= len(cols) {
		return nil, fmt.Errorf("%w: column %d", ErrInvalidTarget, d.Target)
	}
	if d.Source != d.Target && cols[d.Target].IsOverflow() {
		return nil, fmt.Errorf("%w: column %d has no status", ErrInvalidTarget, d.Target)
	}
	src := cols[d.Source].Tasks
	if d.SourceIndex < 0 || d.SourceIndex >= len(src) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, d.SourceIndex, len(src))
	}
	if src[d.SourceIndex].ID != d.TaskID {
		return nil, fmt.Errorf("%w: want task %d, found %d", ErrTaskMismatch, d.TaskID, src[d.SourceIndex].ID)
	}

	if d.Source == d.Target {
		cols[d.Source].Tasks = reorder(src, d.SourceIndex, d.TargetIndex)
		return nil, nil
	}

	task := src[d.SourceIndex]
	cols[d.Source].Tasks = remove(src, d.SourceIndex)

	p := &Pending{TaskID: task.ID, Status: cols[d.Target].Key, From: task.Status}
	task.Status = p.Status
	cols[d.Target].Tasks = insert(cols[d.Target].Tasks, d.TargetIndex, task)
	m.pending = p

	log.WithFields(log.Fields{
		"task_id": task.ID,
		"from":    p.From,
		"to":      p.Status,
	}).Debug("optimistic move applied")
	return p, nil
}

// Commit finishes a successful move by adopting the status the backend
// returned. If that status differs from the target column, the task is
// placed wherever its status now belongs. Unknown or stale pendings are
// ignored.
func (m *Mover) Commit(p *Pending, updated model.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p == nil || m.pending != p {
		return
	}
	m.pending = nil

	status := CanonicalStatus(updated.Status)
	if status == "" {
		return
	}
	c, i, ok := m.board.Find(p.TaskID)
	if !ok {
		return
	}
	m.board.Columns[c].Tasks[i].Status = status
	if status != m.board.Columns[c].Key {
		log.WithFields(log.Fields{
			"task_id":  p.TaskID,
			"expected": p.Status,
			"actual":   status,
		}).Warn("backend returned a different status than requested")
		tasks := append(m.board.Flatten(), m.board.Dropped...)
		m.board = Reconcile(m.board.Columns, tasks, WithUnmatched(m.layout.Unmatched))
	}
}

// Fail finishes a rejected move. The optimistic state stays visible until
// the caller's full reload replaces it.
func (m *Mover) Fail(p *Pending) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p == nil || m.pending != p {
		return
	}
	m.pending = nil
}

// Drop applies d and, for a cross-column move, settles it with the
// backend.
func (m *Mover) Drop(ctx context.Context, d Drop) (Board, error) {
	p, err := m.Apply(d)
	if err != nil {
		return m.Board(), err
	}
	if p == nil {
		return m.Board(), nil
	}
	s, err := m.Settle(ctx, p)
	return s.Board, err
}

// Settle sends a pending move to the backend and commits it. When the
// backend rejects the move, a full reload rebuilds the board and the
// update error is returned together with any reload error.
func (m *Mover) Settle(ctx context.Context, p *Pending) (Settlement, error) {
	updated, err := m.updater.UpdateTaskStatus(ctx, p.TaskID, p.Status)
	if err == nil {
		m.Commit(p, updated)
		return Settlement{Board: m.Board(), Task: &updated}, nil
	}

	m.Fail(p)
	moveErr := fmt.Errorf("moving task %d to %s: %w", p.TaskID, p.Status, err)
	log.WithError(err).WithField("task_id", p.TaskID).Warn("move rejected, reloading board")

	snap, reloadErr := m.reloader.LoadAll(ctx)
	if reloadErr != nil {
		return Settlement{Board: m.Board()}, errors.Join(moveErr, fmt.Errorf("reloading board: %w", reloadErr))
	}
	return Settlement{Board: m.Replace(snap.Tasks), Reload: &snap}, moveErr
}

func (b Board) clone() Board {
	out := Board{
		Columns: make([]Column, len(b.Columns)),
		Dropped: append([]model.Task(nil), b.Dropped...),
	}
	for i, col := range b.Columns {
		col.Tasks = append([]model.Task{}, col.Tasks...)
		out.Columns[i] = col
	}
	return out
}

func remove(tasks []model.Task, i int) []model.Task {
	out := make([]model.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

func insert(tasks []model.Task, i int, task model.Task) []model.Task {
	if i < 0 {
		i = 0
	}
	if i > len(tasks) {
		i = len(tasks)
	}
	out := make([]model.Task, 0, len(tasks)+1)
	out = append(out, tasks[:i]...)
	out = append(out, task)
	return append(out, tasks[i:]...)
}

// reorder moves the element at from to position to, clamping to to the
// slice bounds.
func reorder(tasks []model.Task, from, to int) []model.Task {
	task := tasks[from]
	return insert(remove(tasks, from), to, task)
}
