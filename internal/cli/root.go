// Package cli wires configuration, credentials and the hive store into the
// hivecli commands.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/beehive-tools/hivecli/internal/api"
	"github.com/beehive-tools/hivecli/internal/auth"
	"github.com/beehive-tools/hivecli/internal/config"
	"github.com/beehive-tools/hivecli/internal/controller"
	"github.com/beehive-tools/hivecli/internal/logging"
	"github.com/beehive-tools/hivecli/internal/store"
	"github.com/beehive-tools/hivecli/internal/tui"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const appName = "hivecli"

// Env holds the process-level dependencies of the commands.
type Env struct {
	Version  string
	Resolver *auth.Resolver
	// RunTUI starts the interactive interface; replaced in tests.
	RunTUI func(*controller.HivesController, tui.Options) error

	configPath string
	host       string
	namespace  string
	logLevel   string
}

// NewEnv returns an Env using the system keychain and the real TUI.
func NewEnv(version string) *Env {
	return &Env{
		Version:  version,
		Resolver: auth.NewResolver(),
		RunTUI:   tui.Run,
	}
}

// Execute runs the root command with os.Args.
func Execute(version string) error {
	return NewRootCommand(NewEnv(version)).Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Manage beehive hives from the terminal",
		Long: `hivecli talks to the hives resource of a beehive server.

Run without arguments to open the interactive list, or use the
subcommands for scripting.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.open()
			if err != nil {
				return err
			}
			defer s.Close()

			return env.RunTUI(s.ctrl, tui.Options{
				Endpoint: s.cfg.Endpoint,
				Resolver: env.Resolver,
			})
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&env.configPath, "config", "c", "", "Config file path (default $XDG_CONFIG_HOME/hivecli/config.yaml)")
	flags.StringVar(&env.host, "host", "", "Beehive server URL (default http://localhost:8181)")
	flags.StringVar(&env.namespace, "namespace", "", "API namespace (default v1)")
	flags.StringVar(&env.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	cmd.AddCommand(
		newListCommand(env),
		newAddCommand(env),
		newCompleteCommand(env, "done", true),
		newCompleteCommand(env, "undone", false),
		newRemoveCommand(env),
		newAuthCommand(env),
		newVersionCommand(env),
	)

	return cmd
}

// session is one command's view of config, logging and the hive store.
type session struct {
	cfg    *config.Config
	ctrl   *controller.HivesController
	logOut io.Closer
}

func (s *session) Close() error {
	if s.logOut == nil {
		return nil
	}
	return s.logOut.Close()
}

func (env *Env) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(env.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	overrides := &config.Config{}
	overrides.Endpoint.Host = env.host
	overrides.Endpoint.Namespace = env.namespace
	overrides.Log.Level = env.logLevel
	cfg.Merge(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (env *Env) open() (*session, error) {
	cfg, err := env.loadConfig()
	if err != nil {
		return nil, err
	}

	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, err
	}

	logger := logging.Component("cli")
	opts := []api.ClientOption{api.WithTimeout(cfg.Timeout)}

	creds, source, err := env.Resolver.Resolve()
	switch {
	case err == nil:
		opts = append(opts, api.WithToken(creds.Token))
	case errors.Is(err, auth.ErrNoCredentials):
		logger.Debug("No API token configured, sending anonymous requests")
	default:
		logger.WithError(err).Warn("Failed to read API token")
	}

	logger.WithFields(log.Fields{
		"host":         cfg.Endpoint.Host,
		"namespace":    cfg.Endpoint.Namespace,
		"token_source": source,
	}).Debug("Session opened")

	client := api.NewClient(cfg.Endpoint, opts...)
	s := store.New(client,
		store.WithLogger(logging.Component("store")),
		store.WithOperationTimeout(cfg.Timeout),
	)

	return &session{
		cfg:    cfg,
		ctrl:   controller.NewHivesController(s),
		logOut: closer,
	}, nil
}
