package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/xlremote-go/internal/cli/output"
	"github.com/yndnr/xlremote-go/internal/core/domain"
	"github.com/yndnr/xlremote-go/internal/storage/xlsx"
)

// SnapshotCommand returns the snapshot command.
func SnapshotCommand() *cli.Command {
	return &cli.Command{
		Name:      "snapshot",
		Usage:     "Print the book snapshot built from a local workbook",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "client-version",
				Usage: "client version to put in the snapshot (default from the profile)",
			},
		},
		Action: snapshot,
	}
}

func snapshot(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return fmt.Errorf("expected one FILE argument")
	}

	snap, err := loadSnapshot(c.Args().First(), clientVersion(c, flags))
	if err != nil {
		return err
	}
	if flags.Output == output.FormatTable {
		return render(c, flags.Output, snapshotTable{snap})
	}
	return render(c, flags.Output, snap)
}

func clientVersion(c *cli.Context, flags *GlobalFlags) string {
	if v := c.String("client-version"); v != "" {
		return v
	}
	return flags.ClientVersion
}

// loadSnapshot reads a snapshot from a .json file or builds one from a
// workbook.
func loadSnapshot(path, version string) (*domain.Snapshot, error) {
	if isJSON(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		return domain.DecodeSnapshot(data)
	}

	wb, err := xlsx.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return wb.Snapshot(version)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// snapshotTable lists the sheets of a snapshot.
type snapshotTable struct {
	snap *domain.Snapshot
}

func (s snapshotTable) Table() *output.Table {
	t := &output.Table{Headers: []string{"INDEX", "SHEET", "ROWS", "COLUMNS", "ACTIVE"}}
	for i, sh := range s.snap.Sheets {
		rows, cols := sh.Dimensions()
		active := ""
		if i == s.snap.Book.ActiveSheetIndex {
			active = "*"
		}
		t.AddRow(strconv.Itoa(i), sh.Name, strconv.Itoa(rows), strconv.Itoa(cols), active)
	}
	return t
}
