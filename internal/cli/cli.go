// Package cli wires configuration, logging, loading and the front ends into
// the er2view command tree.
package cli

import (
	"fmt"
	"io"

	"github.com/nconklindev/er2view/internal/config"
	"github.com/nconklindev/er2view/internal/export"
	"github.com/nconklindev/er2view/internal/gui"
	"github.com/nconklindev/er2view/internal/loader"
	"github.com/nconklindev/er2view/internal/logger"
	"github.com/nconklindev/er2view/internal/moderator"
	"github.com/nconklindev/er2view/internal/ui"
	"github.com/nconklindev/er2view/internal/view"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type options struct {
	configFile string
	mods       []string
	sort       string
	logLevel   string
	gui        bool
	out        string
}

// session is everything a command needs once startup succeeded.
type session struct {
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
	ctrl   *view.Controller
}

func (s *session) Close() error { return s.closer.Close() }

// NewRootCommand builds the command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "er2view [data-file]",
		Short: "Browse Extreme Reactors 2 moderator data",
		Long: "er2view loads an Extreme Reactors 2 moderator data file and shows it as a table\n" +
			"that can be filtered by mod and sorted by column.",
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", info.Version, info.Commit, info.Date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := start(cmd, opts, args, configuredLog)
			if err != nil {
				return err
			}
			defer s.Close()

			if opts.gui || s.cfg.View.Frontend == config.FrontendGUI {
				s.log.Info().Msg("starting desktop window")
				return gui.Run(s.ctrl, s.cfg.Export.Path, s.log)
			}

			s.log.Info().Msg("starting terminal viewer")
			model := ui.NewModel(s.ctrl, s.cfg.Data.Path, s.cfg.Export.Path, s.log)
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = p.Run()
			return err
		},
	}
	root.SetVersionTemplate("er2view {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default "+config.DefaultFile+" if present)")
	flags.StringSliceVar(&opts.mods, "mod", nil, "only show these mods (repeatable)")
	flags.StringVar(&opts.sort, "sort", "", "sort column, descending")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&opts.gui, "gui", false, "open the desktop window instead of the terminal viewer")

	root.AddCommand(newPrintCommand(opts), newExportCommand(opts))
	return root
}

func newPrintCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "print [data-file]",
		Short: "Print the filtered and sorted table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := start(cmd, opts, args, alwaysConsole)
			if err != nil {
				return err
			}
			defer s.Close()

			_, err = fmt.Fprintln(cmd.OutOrStdout(), RenderTable(s.ctrl.Rows()))
			return err
		},
	}
}

func newExportCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [data-file]",
		Short: "Write the filtered and sorted table to CSV or XLSX",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := start(cmd, opts, args, alwaysConsole)
			if err != nil {
				return err
			}
			defer s.Close()

			out := s.cfg.Export.Path
			if opts.out != "" {
				out = opts.out
			}
			result, err := export.Write(out, s.ctrl.Rows(), nil)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			s.log.Info().Str("path", result.OutputFile).Int("rows", result.RowsExported).Msg("view exported")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", result.RowsExported, result.OutputFile)
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (.csv or .xlsx)")
	return cmd
}

type logMode int

const (
	configuredLog logMode = iota
	alwaysConsole
)

// start loads configuration, opens the log, reads and normalizes the data
// file and applies the initial filter and sort.
func start(cmd *cobra.Command, opts *options, args []string, mode logMode) (*session, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		cfg.Data.Path = args[0]
	}
	if len(opts.mods) > 0 {
		cfg.View.Mods = opts.mods
	}
	if opts.sort != "" {
		cfg.View.Sort = opts.sort
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	// Non-interactive commands own no screen, so file logging goes to stderr.
	if mode == alwaysConsole && cfg.Logging.Output == config.OutputFile {
		cfg.Logging.Output = config.OutputConsole
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, closer, err := logger.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	log = log.With().Str("component", "cli").Logger()

	src, err := loader.LoadFormat(cfg.Data.Path, loader.Format(cfg.Data.Format))
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Data.Path).Msg("cannot load data")
		closer.Close()
		return nil, err
	}

	records := moderator.Normalize(src)
	log.Info().
		Str("path", cfg.Data.Path).
		Int("records", len(records)).
		Msg("data loaded")

	ctrl := view.New(records, log)
	if len(cfg.View.Mods) > 0 {
		if err := ctrl.Handle(view.SelectMods{Mods: cfg.View.Mods}); err != nil {
			closer.Close()
			return nil, err
		}
	}
	if cfg.View.Sort != "" {
		err = ctrl.Handle(view.SelectSort{Field: cfg.View.Sort})
	} else {
		err = ctrl.Handle(view.Update{})
	}
	if err != nil {
		closer.Close()
		return nil, err
	}

	return &session{cfg: cfg, log: log, closer: closer, ctrl: ctrl}, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8C42")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// RenderTable draws rows as a bordered text table.
func RenderTable(rows []moderator.Moderator) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = r.Cells()
	}

	// Type, Mod and ID are text; the rest are numbers.
	const firstNumeric = 3

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderHeader(true).
		BorderRow(false).
		Headers(moderator.Headers()...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= firstNumeric:
				return numberStyle
			}
			return cellStyle
		})

	return t.Render()
}
