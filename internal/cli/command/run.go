package command

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/xlremote-go/internal/cli/connection"
	"github.com/yndnr/xlremote-go/internal/cli/output"
	"github.com/yndnr/xlremote-go/internal/core/domain"
	"github.com/yndnr/xlremote-go/internal/storage/xlsx"
)

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Post a workbook snapshot to an endpoint and show the returned actions",
		ArgsUsage: "ENDPOINT FILE",
		Description: "ENDPOINT is a route such as /hello or capitalize-sheet-names. FILE is an\n" +
			".xlsx workbook or a snapshot .json. With --save the actions are replayed\n" +
			"onto the workbook, or the returned snapshot is written for .json input.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "save",
				Usage: "write the result to this file",
			},
			&cli.BoolFlag{
				Name:  "in-place",
				Usage: "write the result back to FILE",
			},
			&cli.StringFlag{
				Name:  "client-version",
				Usage: "client version to put in the snapshot (default from the profile)",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	client, flags, err := connect(c)
	if err != nil {
		return err
	}
	if c.NArg() != 2 {
		return fmt.Errorf("expected ENDPOINT and FILE arguments")
	}
	endpoint, path := endpointPath(c.Args().Get(0)), c.Args().Get(1)

	savePath := c.String("save")
	if c.Bool("in-place") {
		if savePath != "" {
			return fmt.Errorf("--save and --in-place are mutually exclusive")
		}
		savePath = path
	}

	snap, err := loadSnapshot(path, clientVersion(c, flags))
	if err != nil {
		return err
	}

	resp, err := client.Post(c.Context, endpoint, snap)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	body, err := connection.ReadBody(resp)
	if err != nil {
		return err
	}
	result, err := domain.DecodeSnapshot(body)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if savePath != "" {
		if err := save(c, path, savePath, result); err != nil {
			return err
		}
	}

	if flags.Output == output.FormatTable {
		return render(c, flags.Output, actionTable(result.Actions))
	}
	return render(c, flags.Output, result.Actions)
}

func endpointPath(s string) string {
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return s
}

// save writes the result: a snapshot stays a snapshot, a workbook gets the
// actions replayed.
func save(c *cli.Context, src, dst string, result *domain.Snapshot) error {
	if isJSON(src) {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		return os.WriteFile(dst, append(data, '\n'), 0o644)
	}

	wb, err := xlsx.Open(src)
	if err != nil {
		return err
	}
	defer wb.Close()

	rep, err := wb.Apply(result.Actions)
	if err != nil {
		return err
	}
	if err := wb.SaveAs(dst); err != nil {
		return err
	}
	for _, a := range rep.Skipped {
		fmt.Fprintf(c.App.ErrWriter, "skipped %s: needs a spreadsheet client\n", a.Func)
	}
	return nil
}

type actionTable []domain.Action

func (a actionTable) Table() *output.Table {
	t := &output.Table{Headers: []string{"#", "FUNC", "SHEET", "RANGE", "ARGS"}}
	for i, act := range a {
		args := "-"
		switch {
		case len(act.Values) > 0:
			args = output.Cell(act.Values)
		case len(act.Args) > 0:
			args = output.Cell(act.Args)
		}
		t.AddRow(strconv.Itoa(i), act.Func, output.Cell(act.SheetPosition), actionRange(act), args)
	}
	return t
}

// actionRange returns the A1 address an action targets, or "-".
func actionRange(a domain.Action) string {
	if a.StartRow == nil || a.StartColumn == nil || a.RowCount == nil || a.ColumnCount == nil {
		return "-"
	}
	r := domain.CellAt(*a.StartRow+1, *a.StartColumn+1)
	r.EndRow += *a.RowCount - 1
	r.EndCol += *a.ColumnCount - 1
	return r.String()
}
