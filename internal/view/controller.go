// Package view holds the viewer's state machine. Front ends translate their
// toolkit's input into Events and redraw from Rows after each Handle.
package view

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nconklindev/er2view/internal/moderator"

	"github.com/rs/zerolog"
)

// ErrClosed is returned for events that arrive after Exit.
var ErrClosed = errors.New("viewer session closed")

type State int

const (
	StateIdle State = iota
	StateRendering
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event is a user interaction.
type Event interface {
	event()
}

// ToggleMod flips one mod in the pending selection. It does not re-render.
type ToggleMod struct{ Mod string }

// SelectMods replaces the pending selection. It does not re-render.
type SelectMods struct{ Mods []string }

// SelectSort picks the sort column and re-renders immediately.
type SelectSort struct{ Field string }

// Update applies the pending selection and re-renders.
type Update struct{}

// Exit ends the session.
type Exit struct{}

func (ToggleMod) event()  {}
func (SelectMods) event() {}
func (SelectSort) event() {}
func (Update) event()     {}
func (Exit) event()       {}

// Controller owns the table view state. It is not safe for concurrent use;
// front ends call it from their event loop only.
type Controller struct {
	records []moderator.Moderator
	mods    []string
	pending map[string]bool
	query   moderator.Query
	rows    []moderator.Moderator
	state   State
	done    bool
	renders int
	log     zerolog.Logger
}

// New builds a controller over records. The initial view shows every
// record in source order.
func New(records []moderator.Moderator, log zerolog.Logger) *Controller {
	return &Controller{
		records: records,
		mods:    moderator.ModNames(records),
		pending: make(map[string]bool),
		rows:    slices.Clone(records),
		log:     log.With().Str("component", "view").Logger(),
	}
}

// Handle runs one Idle -> Rendering -> Idle step for ev.
func (c *Controller) Handle(ev Event) error {
	if c.done {
		if _, ok := ev.(Exit); ok {
			return nil
		}
		return ErrClosed
	}

	switch ev := ev.(type) {
	case ToggleMod:
		if !slices.Contains(c.mods, ev.Mod) {
			c.log.Warn().Str("mod", ev.Mod).Msg("toggle of unknown mod ignored")
			return nil
		}
		c.pending[ev.Mod] = !c.pending[ev.Mod]
		return nil

	case SelectMods:
		c.pending = make(map[string]bool, len(ev.Mods))
		for _, m := range ev.Mods {
			if !slices.Contains(c.mods, m) {
				c.log.Warn().Str("mod", m).Msg("selection of unknown mod ignored")
				continue
			}
			c.pending[m] = true
		}
		return nil

	case SelectSort:
		if !moderator.IsField(ev.Field) {
			c.log.Warn().Str("field", ev.Field).Msg("sort field rejected")
			return fmt.Errorf("%w: %q", moderator.ErrUnknownField, ev.Field)
		}
		c.query.SortBy = ev.Field
		return c.render()

	case Update:
		return c.render()

	case Exit:
		c.done = true
		c.log.Debug().Int("renders", c.renders).Msg("session closed")
		return nil
	}
	return fmt.Errorf("unhandled event %T", ev)
}

func (c *Controller) render() error {
	c.state = StateRendering
	defer func() { c.state = StateIdle }()

	c.query.Mods = c.SelectedMods()
	rows, err := moderator.Apply(c.records, c.query)
	if err != nil {
		return err
	}
	c.rows = rows
	c.renders++

	c.log.Debug().
		Int("rows", len(rows)).
		Strs("mods", c.query.Mods).
		Str("sort", c.query.SortBy).
		Msg("view rendered")
	return nil
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Done() bool { return c.done }

// Rows returns the rows of the last render.
func (c *Controller) Rows() []moderator.Moderator { return c.rows }

// Records returns every normalized record.
func (c *Controller) Records() []moderator.Moderator { return c.records }

// Mods returns the distinct mod names, ascending.
func (c *Controller) Mods() []string { return c.mods }

// Selected reports whether mod is in the pending selection.
func (c *Controller) Selected(mod string) bool { return c.pending[mod] }

// SelectedMods returns the pending selection in ascending order.
func (c *Controller) SelectedMods() []string {
	var out []string
	for _, m := range c.mods {
		if c.pending[m] {
			out = append(out, m)
		}
	}
	return out
}

// AppliedMods returns the selection used by the last render.
func (c *Controller) AppliedMods() []string { return c.query.Mods }

func (c *Controller) SortField() string { return c.query.SortBy }
