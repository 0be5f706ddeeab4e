package command

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/xlremote-go/internal/cli/config"
	"github.com/yndnr/xlremote-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage CLI profiles",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "List the profiles",
				Action: configShow,
			},
			{
				Name:      "set-profile",
				Usage:     "Create or update a profile",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "server", Usage: "server URL"},
					&cli.StringFlag{Name: "token", Usage: "Authorization header value"},
					&cli.StringFlag{Name: "ca-file", Usage: "PEM file with extra CA certificates"},
					&cli.BoolFlag{Name: "insecure", Usage: "skip TLS certificate verification"},
					&cli.StringFlag{Name: "client-version", Usage: "client version for local snapshots"},
					&cli.BoolFlag{Name: "use", Usage: "make it the current profile"},
				},
				Action: configSetProfile,
			},
			{
				Name:      "use",
				Usage:     "Select the current profile",
				ArgsUsage: "NAME",
				Action:    configUse,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	cfg := cliConfig(c)
	if flags.Output != output.FormatTable {
		return render(c, flags.Output, profilesView(cfg))
	}
	return render(c, flags.Output, profileTable{cfg})
}

func configSetProfile(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("expected a profile NAME")
	}
	cfg := cliConfig(c)

	p := cfg.Profiles[name]
	if c.IsSet("server") {
		p.Server = c.String("server")
	}
	if c.IsSet("token") {
		p.Token = c.String("token")
	}
	if c.IsSet("ca-file") {
		p.CAFile = c.String("ca-file")
	}
	if c.IsSet("insecure") {
		p.Insecure = c.Bool("insecure")
	}
	if c.IsSet("client-version") {
		p.ClientVersion = c.String("client-version")
	}
	cfg.Profiles[name] = p
	if c.Bool("use") || cfg.CurrentProfile == "" {
		cfg.CurrentProfile = name
	}

	if err := config.Save(cfg, c.String("config")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "profile %q saved\n", name)
	return nil
}

func configUse(c *cli.Context) error {
	name := c.Args().First()
	cfg := cliConfig(c)
	if _, ok := cfg.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	cfg.CurrentProfile = name
	if err := config.Save(cfg, c.String("config")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "using profile %q\n", name)
	return nil
}

func sortedProfiles(cfg *config.CLIConfig) []string {
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// profileView hides tokens in printed configuration.
type profileView struct {
	Name     string `json:"name"`
	Server   string `json:"server"`
	Token    string `json:"token,omitempty"`
	CAFile   string `json:"ca_file,omitempty"`
	Insecure bool   `json:"insecure,omitempty"`
	Current  bool   `json:"current"`
}

func profilesView(cfg *config.CLIConfig) []profileView {
	views := []profileView{}
	for _, name := range sortedProfiles(cfg) {
		p := cfg.Profiles[name]
		v := profileView{
			Name:     name,
			Server:   p.Server,
			CAFile:   p.CAFile,
			Insecure: p.Insecure,
			Current:  name == cfg.CurrentProfile,
		}
		if p.Token != "" {
			v.Token = "***"
		}
		views = append(views, v)
	}
	return views
}

type profileTable struct {
	cfg *config.CLIConfig
}

func (p profileTable) Table() *output.Table {
	t := &output.Table{Headers: []string{"CURRENT", "NAME", "SERVER", "TOKEN"}}
	for _, v := range profilesView(p.cfg) {
		current := ""
		if v.Current {
			current = "*"
		}
		t.AddRow(current, v.Name, output.Cell(v.Server), output.Cell(v.Token))
	}
	return t
}
