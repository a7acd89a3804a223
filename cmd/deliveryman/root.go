package deliveryman

import (
	"io/fs"

	"github.com/arthur-debert/deliveryman/internal/version"
	"github.com/arthur-debert/deliveryman/pkg/cobrax/topics"
	"github.com/arthur-debert/deliveryman/pkg/commands"
	"github.com/arthur-debert/deliveryman/pkg/config"
	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/arthur-debert/deliveryman/pkg/release"
	"github.com/arthur-debert/deliveryman/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	verbosity int
	profiles  []string
	format    string
}

// profileFlags maps persistent flag names to profile keys. Only flags the
// user set on the command line override the profile.
var profileFlags = map[string]string{
	"host":             "host",
	"port":             "port",
	"username":         "username",
	"password":         "password",
	"ssh-key":          "ssh_key",
	"known-hosts":      "known_hosts",
	"path":             "path",
	"timeout":          "timeout",
	"keep-permissions": "keep_permissions",
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "deliveryman",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.StringSliceVarP(&g.profiles, "profile", "p", nil, MsgFlagProfile)
	pf.StringVarP(&g.format, "format", "f", "auto", MsgFlagFormat)
	pf.String("host", "", MsgFlagHost)
	pf.Int("port", 22, MsgFlagPort)
	pf.StringP("username", "u", "", MsgFlagUsername)
	pf.String("password", "", MsgFlagPassword)
	pf.String("ssh-key", "", MsgFlagSSHKey)
	pf.String("known-hosts", "", MsgFlagKnownHosts)
	pf.String("path", ".", MsgFlagPath)
	pf.Duration("timeout", 0, MsgFlagTimeout)
	pf.Bool("keep-permissions", false, MsgFlagKeepPermissions)

	rootCmd.AddGroup(&cobra.Group{ID: "deploy", Title: "DEPLOYMENT:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newSetupCmd(g))
	rootCmd.AddCommand(newStatusCmd(g))
	rootCmd.AddCommand(newReleaseCmd(g))
	rootCmd.AddCommand(newMaintenanceCmd(g))
	rootCmd.AddCommand(newConfigureCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	if sub, err := fs.Sub(helpTopics, "topics"); err == nil {
		opts := topics.Options{Renderer: topics.NewGlamourRenderer()}
		if err := topics.InitializeWithOptions(rootCmd, sub, opts); err != nil {
			log.Warn().Err(err).Msg("Help topics unavailable")
		}
	}
	rootCmd.SetHelpCommandGroupID("misc")

	return rootCmd
}

// loadProfile merges profile files, environment and the flags the user set
func (g *globalFlags) loadProfile(cmd *cobra.Command) (*config.Profile, error) {
	flags := map[string]interface{}{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		key, ok := profileFlags[f.Name]
		if !ok {
			return
		}
		flags[key] = flagValue(cmd.Flags(), f)
	})
	return config.LoadProfile(config.LoadOptions{
		Files: g.profiles,
		Flags: flags,
	})
}

// flagValue returns the typed value of a flag so koanf keeps ints and
// bools as such
func flagValue(fs *pflag.FlagSet, f *pflag.Flag) interface{} {
	switch f.Value.Type() {
	case "int":
		v, _ := fs.GetInt(f.Name)
		return v
	case "bool":
		v, _ := fs.GetBool(f.Name)
		return v
	case "duration":
		v, _ := fs.GetDuration(f.Name)
		return v.String()
	default:
		return f.Value.String()
	}
}

// connect loads the profile and opens the target. The returned function
// closes the connection.
func (g *globalFlags) connect(cmd *cobra.Command) (*release.Manager, *config.Profile, func(), error) {
	profile, err := g.loadProfile(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	done := logging.LogOperationStart(logging.GetLogger("cmd"), "connect")
	m, err := commands.Connect(commands.ConnectOptions{Profile: profile})
	done()
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if err := m.Remote().Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close connection")
		}
	}
	return m, profile, closeFn, nil
}

// render writes a result in the selected output format
func (g *globalFlags) render(cmd *cobra.Command, result interface{}) error {
	r, err := g.renderer(cmd)
	if err != nil {
		return err
	}
	return r.RenderResult(result)
}

func (g *globalFlags) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := ui.ParseFormat(g.format)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

// RenderError prints err with the renderer selected by the flags of cmd
func RenderError(cmd *cobra.Command, err error) {
	format, _ := cmd.Flags().GetString("format")
	f, perr := ui.ParseFormat(format)
	if perr != nil {
		f = ui.FormatAuto
	}
	r, rerr := ui.NewRenderer(f, cmd.ErrOrStderr())
	if rerr != nil {
		cmd.PrintErrln("Error:", err)
		return
	}
	_ = r.RenderError(err)
}
