package deliveryman

import (
	"strings"

	"github.com/arthur-debert/deliveryman/internal/version"
	"github.com/arthur-debert/deliveryman/pkg/commands"
	"github.com/arthur-debert/deliveryman/pkg/naming"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newSetupCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "setup",
		Short:   MsgSetupShort,
		GroupID: "deploy",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, profile, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := commands.Setup(commands.SetupOptions{Manager: m, Target: profile.Target()})
			if err != nil {
				return err
			}
			return g.render(cmd, result)
		},
	}
}

func newStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		GroupID: "deploy",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, profile, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := commands.Status(commands.StatusOptions{Manager: m, Profile: profile})
			if err != nil {
				return err
			}
			return g.render(cmd, result)
		},
	}
}

func newReleaseCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "release",
		Short:   MsgReleaseShort,
		GroupID: "deploy",
	}
	cmd.AddCommand(newReleaseCreateCmd(g))
	cmd.AddCommand(newReleaseUploadCmd(g))
	cmd.AddCommand(newReleaseBindCmd(g))
	cmd.AddCommand(newReleaseSelectCmd(g))
	cmd.AddCommand(newReleaseRemoveCmd(g))
	cmd.AddCommand(newReleaseListCmd(g))
	cmd.AddCommand(newReleaseExecCmd(g))
	return cmd
}

func newReleaseCreateCmd(g *globalFlags) *cobra.Command {
	var opts commands.CreateReleaseOptions

	cmd := &cobra.Command{
		Use:     "create [name]",
		Short:   MsgReleaseCreateShort,
		Long:    MsgReleaseCreateLong,
		Example: MsgReleaseCreateExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = naming.Auto
			if len(args) == 1 {
				opts.Name = args[0]
			}

			m, _, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			opts.Manager = m
			result, err := commands.CreateRelease(opts)
			if err != nil {
				if result != nil {
					log.Warn().Str("release", result.Name).Msg("Release was left partially filled")
				}
				return err
			}
			return g.render(cmd, result)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Artifacts, "artifact", "a", nil, MsgFlagArtifact)
	cmd.Flags().StringArrayVarP(&opts.Shared, "shared", "s", nil, MsgFlagShared)
	cmd.Flags().BoolVar(&opts.IgnoreMissing, "ignore-missing", false, MsgFlagIgnoreMissing)
	cmd.Flags().BoolVar(&opts.Force, "replace", false, MsgFlagReplace)
	cmd.Flags().BoolVar(&opts.Select, "select", false, MsgFlagSelect)
	return cmd
}

func newReleaseUploadCmd(g *globalFlags) *cobra.Command {
	var opts commands.UploadOptions

	cmd := &cobra.Command{
		Use:   "upload <release|maintenance> <[shape:]path>...",
		Short: MsgReleaseUploadShort,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			opts.Manager = m
			opts.Name = args[0]
			opts.Artifacts = args[1:]
			result, err := commands.Upload(opts)
			if err != nil {
				return err
			}
			return g.render(cmd, result)
		},
	}
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, MsgFlagOverwrite)
	return cmd
}

func newReleaseBindCmd(g *globalFlags) *cobra.Command {
	var opts commands.BindOptions

	cmd := &cobra.Command{
		Use:   "bind <release|maintenance> <path>...",
		Short: MsgReleaseBindShort,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			opts.Manager = m
			opts.Name = args[0]
			opts.Paths = args[1:]
			result, err := commands.Bind(opts)
			if err != nil {
				return err
			}
			return g.render(cmd, result)
		},
	}
	cmd.Flags().BoolVar(&opts.IgnoreMissing, "ignore-missing", false, MsgFlagIgnoreMissing)
	return cmd
}

func newReleaseSelectCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:               "select <release>",
		Short:             MsgReleaseSelectShort,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: g.releaseNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := commands.SelectRelease(commands.SelectReleaseOptions{Manager: m, Name: args[0]})
			if err != nil {
				return err
			}
			return g.render(cmd, result)
		},
	}
}

func newReleaseRemoveCmd(g *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:               "remove <release>...",
		Aliases:           []string{"rm"},
		Short:             MsgReleaseRemoveShort,
		Long:              MsgReleaseRemoveLong,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: g.releaseNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			for _, name := range args {
				result, err := commands.RemoveRelease(commands.RemoveReleaseOptions{Manager: m, Name: name, Force: force})
				if err != nil {
					return err
				}
				if err := g.render(cmd, result); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForceRemove)
	return cmd
}

func newReleaseListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgReleaseListShort,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := commands.ListReleases(commands.ListReleasesOptions{Manager: m})
			if err != nil {
				return err
			}
			return g.render(cmd, result)
		},
	}
}

func newReleaseExecCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <release|current|maintenance> -- <command>...",
		Short: MsgReleaseExecShort,
		Long:  MsgReleaseExecLong,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := commands.Execute(commands.ExecuteOptions{
				Manager: m,
				Name:    args[0],
				Command: strings.Join(args[1:], " "),
			})
			if err != nil {
				return err
			}
			return g.render(cmd, result)
		},
	}
}

func newMaintenanceCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "maintenance",
		Short:   MsgMaintenanceShort,
		Long:    MsgMaintenanceLong,
		GroupID: "deploy",
	}
	cmd.AddCommand(newMaintenanceCreateCmd(g))
	cmd.AddCommand(&cobra.Command{
		Use:   "select",
		Short: MsgMaintenanceSelectShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := commands.SelectMaintenance(commands.SelectMaintenanceOptions{Manager: m})
			if err != nil {
				return err
			}
			return g.render(cmd, result)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: MsgMaintenanceCleanShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := commands.CleanMaintenance(commands.CleanMaintenanceOptions{Manager: m})
			if err != nil {
				return err
			}
			return g.render(cmd, result)
		},
	})
	return cmd
}

func newMaintenanceCreateCmd(g *globalFlags) *cobra.Command {
	var opts commands.CreateMaintenanceOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: MsgMaintenanceCreateShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, closeFn, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			opts.Manager = m
			result, err := commands.CreateMaintenance(opts)
			if err != nil {
				return err
			}
			return g.render(cmd, result)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.Artifacts, "artifact", "a", nil, MsgFlagArtifact)
	cmd.Flags().StringArrayVarP(&opts.Shared, "shared", "s", nil, MsgFlagShared)
	cmd.Flags().BoolVar(&opts.IgnoreMissing, "ignore-missing", false, MsgFlagIgnoreMissing)
	cmd.Flags().BoolVar(&opts.Keep, "keep", false, MsgFlagKeep)
	cmd.Flags().BoolVar(&opts.Select, "select", false, MsgFlagSelect)
	return cmd
}

func newConfigureCmd(g *globalFlags) *cobra.Command {
	var opts commands.ConfigureOptions

	cmd := &cobra.Command{
		Use:     "configure",
		Short:   MsgConfigureShort,
		Long:    MsgConfigureLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Template {
				profile, err := g.loadProfile(cmd)
				if err != nil {
					return err
				}
				opts.Profile = profile
			}
			result, err := commands.Configure(opts)
			if err != nil {
				return err
			}
			return g.render(cmd, result)
		},
	}
	cmd.Flags().BoolVar(&opts.Template, "template", false, MsgFlagTemplate)
	cmd.Flags().StringVarP(&opts.Path, "output", "o", "", MsgFlagOutput)
	cmd.Flags().BoolVar(&opts.IncludeSecrets, "include-secrets", false, MsgFlagIncludeSecrets)
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, MsgFlagOverwrite)
	cmd.Flags().BoolVar(&opts.StorePassword, "store-password", false, MsgFlagStorePassword)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}
}

// releaseNamesCompletion completes release names from the target
func (g *globalFlags) releaseNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	m, _, closeFn, err := g.connect(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer closeFn()

	names, err := m.ListReleases()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var available []string
	for _, name := range names {
		if !contains(args, name) {
			available = append(available, name)
		}
	}
	return available, cobra.ShellCompDirectiveNoFileComp
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
