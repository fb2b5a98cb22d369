// Command dremel shreds newline-delimited JSON records into a Dremel
// columnar table and prints it, or round-trips them through shred and
// assemble and prints the reassembled records — a thin driver over the
// parquet package's Shred and Assemble, in the spirit of the teacher's own
// cmd/parquet-* tools.
package main

import (
	"errors"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/go-kit/log/level"
	"github.com/segmentio/encoding/json"

	parquet "github.com/klahnakoski/mo-parquet"
)

type shredCmd struct {
	Input string `arg:"" optional:"" help:"Path to a newline-delimited JSON file; stdin if omitted."`
}

func (c *shredCmd) Run() error {
	records, err := readRecords(c.Input)
	if err != nil {
		return err
	}

	table, err := parquet.Shred(records, nil)
	if err != nil {
		return err
	}

	_, err = os.Stdout.WriteString(table.String())
	return err
}

type assembleCmd struct {
	Input string `arg:"" optional:"" help:"Path to a newline-delimited JSON file; stdin if omitted."`
}

func (c *assembleCmd) Run() error {
	records, err := readRecords(c.Input)
	if err != nil {
		return err
	}

	table, err := parquet.Shred(records, nil)
	if err != nil {
		return err
	}

	rows, err := parquet.Assemble(table)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

var cli struct {
	Shred    shredCmd    `cmd:"" help:"Shred newline-delimited JSON records into a columnar table and print it."`
	Assemble assembleCmd `cmd:"" help:"Round-trip newline-delimited JSON records through shred and assemble."`
}

func readRecords(path string) ([]any, error) {
	r := os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	var records []any
	for {
		var record map[string]any
		if err := dec.Decode(&record); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("dremel"),
		kong.Description("Shred and assemble JSON records against a Dremel/Parquet-style schema."),
	)

	if err := ctx.Run(); err != nil {
		level.Error(parquet.Logger).Log("msg", "dremel command failed", "err", err)
		ctx.FatalIfErrorf(err)
	}
}
