package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/xlremote-go/internal/cli/connection"
	"github.com/yndnr/xlremote-go/internal/cli/output"
	"github.com/yndnr/xlremote-go/internal/core/udf"
)

// FunctionsCommand returns the functions subcommand group.
func FunctionsCommand() *cli.Command {
	return &cli.Command{
		Name:    "functions",
		Aliases: []string{"fn"},
		Usage:   "Inspect and call custom functions",
		Subcommands: []*cli.Command{
			{
				Name:   "meta",
				Usage:  "List the custom functions",
				Action: functionsMeta,
			},
			{
				Name:   "code",
				Usage:  "Print the generated JavaScript",
				Action: functionsCode,
			},
			{
				Name:      "call",
				Usage:     "Call a custom function",
				ArgsUsage: "NAME [ARG...]",
				Description: "Each ARG is parsed as JSON when possible and sent as a string\n" +
					"otherwise, e.g. 3, true, '[[1,2],[3,4]]' or world.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "caller",
						Usage: "caller cell address",
						Value: "Sheet1!A1",
					},
				},
				Action: functionsCall,
			},
		},
	}
}

func functionsMeta(c *cli.Context) error {
	client, flags, err := connect(c)
	if err != nil {
		return err
	}

	resp, err := client.Get(c.Context, "/xlwings/custom-functions-meta")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var meta udf.Meta
	if err := connection.ParseResponse(resp, &meta); err != nil {
		return err
	}
	if flags.Output == output.FormatTable {
		return render(c, flags.Output, metaTable(meta))
	}
	return render(c, flags.Output, meta)
}

func functionsCode(c *cli.Context) error {
	client, _, err := connect(c)
	if err != nil {
		return err
	}

	resp, err := client.Get(c.Context, "/xlwings/custom-functions-code")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	code, err := connection.ReadBody(resp)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(code)
	return err
}

func functionsCall(c *cli.Context) error {
	client, flags, err := connect(c)
	if err != nil {
		return err
	}
	if c.NArg() < 1 {
		return fmt.Errorf("expected a function NAME")
	}

	req := udf.CallRequest{
		FuncName:      c.Args().First(),
		Args:          parseArgs(c.Args().Tail()),
		CallerAddress: c.String("caller"),
		Runtime:       "xlremote-cli",
	}
	resp, err := client.Post(c.Context, "/xlwings/custom-functions-call", req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var result struct {
		Result [][]any `json:"result"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	if flags.Output == output.FormatTable {
		return render(c, flags.Output, result.Result)
	}
	return render(c, flags.Output, result)
}

// parseArgs decodes each argument as JSON, keeping it as a string when it
// is not valid JSON.
func parseArgs(raw []string) []any {
	args := make([]any, len(raw))
	for i, s := range raw {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			v = s
		}
		args[i] = v
	}
	return args
}

type metaTable udf.Meta

func (m metaTable) Table() *output.Table {
	t := &output.Table{Headers: []string{"NAME", "PARAMETERS", "VOLATILE", "DESCRIPTION"}}
	for _, f := range m.Functions {
		params := make([]string, len(f.Parameters))
		for i, p := range f.Parameters {
			params[i] = p.Name
			if p.Optional {
				params[i] += "?"
			}
		}
		t.AddRow(f.Name, output.Cell(strings.Join(params, ", ")), output.Cell(f.Options.Volatile), output.Cell(f.Description))
	}
	return t
}
