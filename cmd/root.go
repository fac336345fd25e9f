package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nova",
		Short:         "Nova runner: drive reward-program accounts from a list of wallets",
		Long:          "nova logs every wallet in privateKeys.txt into the rewards API, syncs its profile and points, optionally checks in and completes open tasks, then repeats on a fixed interval.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newVersionCmd(), newConfigCmd())

	app, err := wireApp()
	if err != nil {
		for _, sub := range []*cobra.Command{newRunCmd(nil), newStatusCmd(nil)} {
			sub.RunE = func(_ *cobra.Command, _ []string) error {
				return err
			}
			rootCmd.AddCommand(sub)
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newRunCmd(app),
		newStatusCmd(app),
	)

	return rootCmd
}
