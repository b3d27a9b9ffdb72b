package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/snooker/internal/app"
)

// NewSettingsCommand creates the settings command.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		autoSave bool
		confirm  bool
		theme    string
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
		Long: `Show the saved preferences, or change them with flags.

Examples:
  snooker settings
  snooker settings --auto-save=false
  snooker settings --confirm=false --theme dark`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			out := rootOpts.formatter(cmd)
			s, err := rootOpts.open(cmd, app.Ports{Notifier: textNotifier{w: out.GetErrWriter(), verbose: rootOpts.Verbose}})
			if err != nil {
				return err
			}
			defer stop(s, &err)

			settings := s.Controller.Settings()
			changed := false
			if cmd.Flags().Changed("auto-save") {
				settings.AutoSave, changed = autoSave, true
			}
			if cmd.Flags().Changed("confirm") {
				settings.ConfirmActions, changed = confirm, true
			}
			if cmd.Flags().Changed("theme") {
				settings.Theme, changed = theme, true
			}
			if changed {
				if err := s.Controller.UpdateSettings(commandContext(cmd), settings); err != nil {
					return failed(out, "could not save settings", err)
				}
			}

			text := fmt.Sprintf("auto-save  %t\nconfirm    %t\ntheme      %s\n",
				settings.AutoSave, settings.ConfirmActions, settings.Theme)
			return out.Emit(text, settings)
		},
	}

	cmd.Flags().BoolVar(&autoSave, "auto-save", true, "save after every change")
	cmd.Flags().BoolVar(&confirm, "confirm", true, "ask before ending breaks, frames and undoing")
	cmd.Flags().StringVar(&theme, "theme", "", "display theme name")

	return cmd
}
