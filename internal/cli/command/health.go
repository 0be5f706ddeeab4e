package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/xlremote-go/internal/cli/connection"
)

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check that the server is up",
		Action: health,
	}
}

func health(c *cli.Context) error {
	client, flags, err := connect(c)
	if err != nil {
		return err
	}

	resp, err := client.Get(c.Context, "/")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	var result map[string]any
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	if result["status"] != "ok" {
		return fmt.Errorf("server unhealthy: status %v", result["status"])
	}
	return render(c, flags.Output, result)
}
