// Package gui is the desktop front end. It drives the same view.Controller
// as the terminal UI from fyne widget callbacks.
package gui

import (
	"fmt"
	"slices"

	"github.com/nconklindev/er2view/internal/export"
	"github.com/nconklindev/er2view/internal/moderator"
	"github.com/nconklindev/er2view/internal/view"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

const (
	AppID           = "com.nconklindev.er2view"
	Title           = "Extreme Reactors 2 Data Viewer"
	MinWindowWidth  = 1000
	MinWindowHeight = 700

	// charWidth converts the column widths, given in characters, to pixels.
	charWidth = 9
)

// Window is the main viewer window.
type Window struct {
	app        fyne.App
	window     fyne.Window
	ctrl       *view.Controller
	exportPath string
	log        zerolog.Logger

	mods      *widget.CheckGroup
	sort      *widget.Select
	table     *widget.Table
	status    *widget.Label
	updateBtn *widget.Button
	exportBtn *widget.Button
	exitBtn   *widget.Button
}

// Run opens the viewer in a new fyne application and blocks until the
// window is closed.
func Run(ctrl *view.Controller, exportPath string, log zerolog.Logger) error {
	w := New(app.NewWithID(AppID), ctrl, exportPath, log)
	w.window.ShowAndRun()
	return nil
}

// New builds the window on a. The window is not shown.
func New(a fyne.App, ctrl *view.Controller, exportPath string, log zerolog.Logger) *Window {
	w := &Window{
		app:        a,
		window:     a.NewWindow(Title),
		ctrl:       ctrl,
		exportPath: exportPath,
		log:        log.With().Str("component", "gui").Logger(),
	}

	w.setupComponents()
	w.setupLayout()

	w.window.Resize(fyne.NewSize(MinWindowWidth, MinWindowHeight))
	w.window.SetMaster()
	w.window.SetOnClosed(func() {
		if err := w.ctrl.Handle(view.Exit{}); err != nil {
			w.log.Warn().Err(err).Msg("close")
		}
	})

	w.refresh()
	return w
}

func (w *Window) setupComponents() {
	w.mods = widget.NewCheckGroup(w.ctrl.Mods(), func(selected []string) {
		w.dispatch(view.SelectMods{Mods: selected})
	})
	w.mods.Selected = w.ctrl.SelectedMods()

	w.sort = widget.NewSelect(moderator.Fields(), func(field string) {
		w.dispatch(view.SelectSort{Field: field})
	})
	w.sort.PlaceHolder = "(none)"
	if field := w.ctrl.SortField(); field != "" {
		w.sort.Selected = field
	}

	w.table = widget.NewTable(
		func() (int, int) { return len(w.ctrl.Rows()), len(moderator.Columns) },
		func() fyne.CanvasObject {
			l := widget.NewLabel("")
			l.Alignment = fyne.TextAlignTrailing
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		w.updateCell,
	)
	w.table.ShowHeaderRow = true
	w.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	}
	w.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		if id.Col >= 0 && id.Col < len(moderator.Columns) {
			o.(*widget.Label).SetText(moderator.Columns[id.Col].Header)
		}
	}
	for i, c := range moderator.Columns {
		w.table.SetColumnWidth(i, float32(c.Width*charWidth))
	}

	w.status = widget.NewLabel("")
	w.updateBtn = widget.NewButton("Update", func() { w.dispatch(view.Update{}) })
	w.exportBtn = widget.NewButton("Export", w.exportView)
	w.exitBtn = widget.NewButton("Exit", func() { w.dispatch(view.Exit{}) })
}

func (w *Window) setupLayout() {
	title := widget.NewLabelWithStyle("Reactor Moderator Data Viewer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	modScroll := container.NewVScroll(w.mods)
	modScroll.SetMinSize(fyne.NewSize(270, 140))

	controls := container.NewVBox(
		title,
		container.NewBorder(nil, nil, widget.NewLabel("Select Mods:"), nil, modScroll),
		container.NewBorder(nil, nil, widget.NewLabel("Sort by:"), nil, w.sort),
	)
	buttons := container.NewHBox(w.updateBtn, w.exitBtn, layout.NewSpacer(), w.status, w.exportBtn)

	w.window.SetContent(container.NewBorder(controls, buttons, nil, nil, w.table))
}

func (w *Window) updateCell(id widget.TableCellID, o fyne.CanvasObject) {
	rows := w.ctrl.Rows()
	if id.Row < 0 || id.Row >= len(rows) || id.Col < 0 || id.Col >= len(moderator.Columns) {
		return
	}
	o.(*widget.Label).SetText(rows[id.Row].Text(moderator.Columns[id.Col].Field))
}

// dispatch feeds ev to the controller, then redraws or quits.
func (w *Window) dispatch(ev view.Event) {
	if err := w.ctrl.Handle(ev); err != nil {
		w.log.Warn().Err(err).Msg("event rejected")
		w.status.SetText(err.Error())
		return
	}
	if w.ctrl.Done() {
		w.app.Quit()
		return
	}
	w.refresh()
}

func (w *Window) refresh() {
	w.table.Refresh()
	w.status.SetText(fmt.Sprintf("%d of %d moderators", len(w.ctrl.Rows()), len(w.ctrl.Records())))
}

func (w *Window) exportView() {
	rows := slices.Clone(w.ctrl.Rows())
	result, err := export.Write(w.exportPath, rows, nil)
	if err != nil {
		w.log.Error().Err(err).Str("path", w.exportPath).Msg("export failed")
		dialog.ShowError(fmt.Errorf("export failed: %w", err), w.window)
		return
	}
	w.log.Info().Str("path", result.OutputFile).Int("rows", result.RowsExported).Msg("view exported")
	w.status.SetText(fmt.Sprintf("Exported %d rows to %s", result.RowsExported, result.OutputFile))
}
