package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nconklindev/sheetsync/internal/infer"
	"github.com/nconklindev/sheetsync/internal/ui"
)

func (a *app) runTUI(cmd *cobra.Command) error {
	policy, err := infer.ParsePolicy(a.cfg.Infer.Policy)
	if err != nil {
		return err
	}
	m := ui.New(ui.Options{
		Policy: policy,
		Infer:  a.cfg.Infer.Config,
		Read:   a.cfg.Read,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err = p.Run()
	return err
}
