package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/laundryconnect/laundryconnect/internal/laundry"
	"github.com/laundryconnect/laundryconnect/internal/reports"
)

type reportFlags struct {
	reportType string
	start      string
	end        string
	entity     string
	format     string
}

func (f *reportFlags) bind(cmd *cobra.Command, withFormat bool) {
	cmd.Flags().StringVarP(&f.reportType, "type", "t", "", "Report type, one of the names listed by the types command")
	cmd.Flags().StringVar(&f.start, "start", "", "First day of the period, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.end, "end", "", "Last day of the period, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.entity, "entity", "", "Filter: provider:<name>, customer:<name> or a bare name")
	if withFormat {
		cmd.Flags().StringVarP(&f.format, "format", "f", "pdf", "Output format: pdf, xlsx or csv")
	}
	_ = cmd.MarkFlagRequired("type")
}

func (f *reportFlags) request() (reports.Request, error) {
	rt, err := reports.ParseReportType(f.reportType)
	if err != nil {
		return reports.Request{}, err
	}
	format, err := reports.ParseFormat(f.format)
	if err != nil {
		return reports.Request{}, err
	}
	rng, err := laundry.ParseDateRange(strings.TrimSpace(f.start), strings.TrimSpace(f.end))
	if err != nil {
		return reports.Request{}, err
	}
	return reports.Request{Start: rng.Start, End: rng.End, Type: rt, EntityFilter: f.entity, Format: format}, nil
}

func newTypesCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the available report types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tTITLE\tSECTIONS")
			for _, rt := range reports.ReportTypes() {
				def, err := reports.DefinitionFor(rt)
				if err != nil {
					return err
				}
				headings := make([]string, len(def.Sections))
				for i, s := range def.Sections {
					headings[i] = s.Heading
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Type, def.Title, strings.Join(headings, ", "))
			}
			return tw.Flush()
		},
	}
}

func newPreviewCmd(r *root) *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print a report as plain-text tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			svc, err := r.service()
			if err != nil {
				return err
			}
			doc, err := svc.Preview(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printDocument(cmd, doc)
		},
	}
	flags.bind(cmd, false)
	return cmd
}

func newGenerateCmd(r *root) *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a report to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			svc, err := r.service()
			if err != nil {
				return err
			}
			sink := &dirSink{dir: r.settings.OutDir}
			artifact, err := svc.Generate(cmd.Context(), req, sink)
			if err != nil {
				return err
			}
			return printArtifact(cmd, sink.path, artifact)
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func newInvoiceCmd(r *root) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "invoice ORDER_ID",
		Short: "Render the invoice of one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := reports.ParseFormat(format)
			if err != nil {
				return err
			}
			svc, err := r.service()
			if err != nil {
				return err
			}
			sink := &dirSink{dir: r.settings.OutDir}
			artifact, err := svc.GenerateInvoice(cmd.Context(), args[0], f, sink)
			if err != nil {
				return err
			}
			return printArtifact(cmd, sink.path, artifact)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "Output format: pdf, xlsx or csv")
	return cmd
}

func printDocument(cmd *cobra.Command, doc reports.ReportDocument) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, doc.Metadata.Title)
	fmt.Fprintln(out, doc.Metadata.RangeLabel)
	for _, note := range doc.Metadata.Notes {
		fmt.Fprintln(out, note)
	}
	for _, section := range doc.Sections {
		fmt.Fprintf(out, "\n%s\n", section.Heading)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
		writeRow := func(cells []string) {
			fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
		}
		writeRow(section.Columns)
		for _, row := range section.Rows {
			writeRow(row)
		}
		if section.Footer != nil {
			writeRow(section.Footer)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func printArtifact(cmd *cobra.Command, path string, artifact reports.Artifact) error {
	if artifact.Pages > 0 {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %d pages)\n", path, len(artifact.Data), artifact.Pages)
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(artifact.Data))
	return err
}

// dirSink writes artifacts into a directory, creating it when needed.
type dirSink struct {
	dir  string
	path string
}

func (s *dirSink) Save(_ context.Context, artifact reports.Artifact) error {
	dir := s.dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, filepath.Base(artifact.Name))
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return err
	}
	s.path = path
	return nil
}
