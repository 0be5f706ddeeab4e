package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/xlremote-go/internal/cli/config"
	"github.com/yndnr/xlremote-go/internal/cli/connection"
	"github.com/yndnr/xlremote-go/internal/cli/output"
	"github.com/yndnr/xlremote-go/internal/infra/buildinfo"
	"github.com/yndnr/xlremote-go/internal/infra/tlsroots"
)

const metaConfig = "config"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "xlremote-cli",
		Usage:   "Talk to an xlremote server from the command line",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			HealthCommand(),
			SnapshotCommand(),
			RunCommand(),
			FunctionsCommand(),
			HashTokenCommand(),
			ConfigCommand(),
		},
		Before: func(c *cli.Context) error {
			if _, err := output.ParseFormat(c.String("output")); err != nil {
				return err
			}
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]any)
			}
			c.App.Metadata[metaConfig] = cfg
			return nil
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server URL (default from the active profile, else " + config.DefaultServer + ")",
			EnvVars: []string{"XLREMOTE_SERVER"},
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "Authorization header value, e.g. \"Bearer s3cret\"",
			EnvVars: []string{"XLREMOTE_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "profile from the CLI config file",
			EnvVars: []string{"XLREMOTE_PROFILE"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file",
			Value:   config.DefaultConfigPath(),
			EnvVars: []string{"XLREMOTE_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "PEM file with extra CA certificates for https servers",
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "skip TLS certificate verification",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "request timeout",
			Value: 30 * time.Second,
		},
	}
}

// GlobalFlags are the connection and output settings of a command, after
// applying the CLI config file.
type GlobalFlags struct {
	Server        string
	Token         string
	CAFile        string
	Insecure      bool
	ClientVersion string
	Output        output.Format
	Timeout       time.Duration
}

// ParseGlobalFlags resolves the global flags. Flags win over the selected
// profile.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg := cliConfig(c)
	profile, err := cfg.Profile(c.String("profile"))
	if err != nil {
		return nil, err
	}

	flags := &GlobalFlags{
		Server:        profile.Server,
		Token:         profile.Token,
		CAFile:        profile.CAFile,
		Insecure:      profile.Insecure,
		ClientVersion: profile.ClientVersion,
		Timeout:       c.Duration("timeout"),
	}
	if v := c.String("server"); v != "" {
		flags.Server = v
	}
	if v := c.String("token"); v != "" {
		flags.Token = v
	}
	if v := c.String("ca-file"); v != "" {
		flags.CAFile = v
	}
	if c.IsSet("insecure") {
		flags.Insecure = c.Bool("insecure")
	}

	format := c.String("output")
	if format == "" {
		format = cfg.DefaultOutput
	}
	if flags.Output, err = output.ParseFormat(format); err != nil {
		return nil, err
	}
	return flags, nil
}

func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// NewClient builds the HTTP client for the resolved flags.
func NewClient(flags *GlobalFlags) (*connection.HTTPClient, error) {
	opts := []connection.Option{connection.WithTimeout(flags.Timeout)}
	if flags.CAFile != "" || flags.Insecure {
		tlsCfg, err := tlsroots.ClientConfig(flags.CAFile, flags.Insecure)
		if err != nil {
			return nil, err
		}
		opts = append(opts, connection.WithTLSConfig(tlsCfg))
	}
	return connection.NewHTTPClient(flags.Server, flags.Token, opts...), nil
}

// connect resolves the flags and builds the client in one step.
func connect(c *cli.Context) (*connection.HTTPClient, *GlobalFlags, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, nil, err
	}
	client, err := NewClient(flags)
	if err != nil {
		return nil, nil, fmt.Errorf("tls: %w", err)
	}
	return client, flags, nil
}

// render prints data in the selected format.
func render(c *cli.Context, format output.Format, data any) error {
	return output.NewFormatter(format).Format(c.App.Writer, data)
}
