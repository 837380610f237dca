package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tdce/dce"
	"github.com/gnolang/tdce/formatter"
	"github.com/gnolang/tdce/internal"
	"github.com/gnolang/tdce/internal/irtext"
	tt "github.com/gnolang/tdce/internal/types"
)

var (
	showReport bool
	jsonOutput bool
	outPath    string
	emitYAML   bool
)

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Remove dead instructions and print the optimized IR",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		engine, err := internal.NewEngine(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}

		if err := runElimination(ctx, logger, engine, args, cmd.OutOrStdout()); err != nil {
			logger.Error("Error processing files", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().BoolVar(&showReport, "report", false, "Print the removed instructions instead of the optimized IR")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report in JSON format")
	runCmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the output to this file instead of stdout")
	runCmd.Flags().BoolVar(&emitYAML, "yaml", false, "Print the optimized IR as a YAML graph (always on for YAML inputs)")
}

func runElimination(ctx context.Context, logger *zap.Logger, engine dce.DCEEngine, paths []string, stdout io.Writer) error {
	reports, err := dce.ProcessFiles(ctx, logger, engine, paths, dce.ProcessFile)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch {
	case jsonOutput:
		d, err := formatter.FormatJSON(reports)
		if err != nil {
			return fmt.Errorf("error marshalling report to JSON: %w", err)
		}
		buf.Write(d)
		buf.WriteString("\n")
	case showReport:
		buf.WriteString(formatter.FormatReports(reports))
	default:
		if err := writeModules(&buf, reports); err != nil {
			return err
		}
	}

	if outPath == "" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	return nil
}

func writeModules(w *bytes.Buffer, reports []tt.FileReport) error {
	for i, r := range reports {
		if i > 0 {
			w.WriteString("\n")
		}
		if len(reports) > 1 {
			fmt.Fprintf(w, "# %s\n", r.Filename)
		}
		if emitYAML || irtext.IsYAML(r.Filename) {
			d, err := irtext.MarshalYAML(r.Module)
			if err != nil {
				return fmt.Errorf("error marshalling %s: %w", r.Filename, err)
			}
			w.Write(d)
			continue
		}
		if err := irtext.Print(w, r.Module); err != nil {
			return err
		}
	}
	return nil
}
