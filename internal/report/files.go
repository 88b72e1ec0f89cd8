package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
	"github.com/olekukonko/tablewriter"

	"genretopics/internal/domain"
)

// Writer renders report data into a fresh run directory below Dir.
type Writer struct {
	Dir  string
	CSV  bool
	HTML bool
}

// Write creates <Dir>/<run id> and fills it with the enabled outputs.
// It returns the run directory.
func (w *Writer) Write(d Data) (string, error) {
	runDir := filepath.Join(w.Dir, ulid.Make().String())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", domain.Fail(domain.StageReport, err)
	}
	if w.CSV {
		for _, t := range Tables(d) {
			if err := writeCSVFile(filepath.Join(runDir, t.Name+".csv"), t); err != nil {
				return runDir, domain.Fail(domain.StageReport, err)
			}
		}
	}
	if w.HTML {
		f, err := os.Create(filepath.Join(runDir, "report.html"))
		if err != nil {
			return runDir, domain.Fail(domain.StageReport, err)
		}
		err = RenderHTML(f, d)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return runDir, domain.Fail(domain.StageReport, err)
		}
	}
	glog.Infof("report written to %s", runDir)
	return runDir, nil
}

func writeCSVFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// WriteCSV writes the header and rows of t.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// PrintTables renders every table, and the warnings if any, for a terminal.
func PrintTables(w io.Writer, d Data) {
	for _, t := range Tables(d) {
		fmt.Fprintf(w, "\n%s\n", t.Name)
		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetHeader(t.Header)
		table.AppendBulk(t.Rows)
		table.Render()
	}
	if len(d.Warnings) > 0 {
		fmt.Fprintln(w, "\nwarnings")
		for _, wn := range d.Warnings {
			fmt.Fprintf(w, "  %s\n", wn)
		}
	}
}
