package command

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/xlremote-go/internal/core/service"
)

// HashTokenCommand returns the hash-token command.
func HashTokenCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-token",
		Usage:     "Print the Argon2id hash of a token for security.auth_tokens",
		ArgsUsage: "[TOKEN]",
		Description: "Without TOKEN the first line of standard input is hashed, which\n" +
			"keeps the token out of the shell history.",
		Action: hashToken,
	}
}

func hashToken(c *cli.Context) error {
	token := c.Args().First()
	if token == "" {
		line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read token: %w", err)
		}
		token = strings.TrimSpace(line)
	}
	if token == "" {
		return fmt.Errorf("token is empty")
	}

	hash, err := service.HashToken(token)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, hash)
	return nil
}
