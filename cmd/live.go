package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tdce/formatter"
	"github.com/gnolang/tdce/internal/analysis/cfg"
	"github.com/gnolang/tdce/internal/analysis/usedef"
	"github.com/gnolang/tdce/internal/config"
	"github.com/gnolang/tdce/internal/irtext"
	"github.com/gnolang/tdce/internal/tdce"
	"github.com/gnolang/tdce/internal/trace"
)

// variable for flags
var (
	funcName  string
	showEdges bool
)

var liveCmd = &cobra.Command{
	Use:   "live [paths...]",
	Short: "Print the liveness sets of every instruction",
	Long: `Solves liveness without removing anything and prints the use, def, in and out sets of every
instruction of the selected function, or of all functions when --func is not given.
Example) tdce live --func main prog.ir`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file paths")
			os.Exit(1)
		}
		// timeout is a global variable declared in root.go
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		c, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		if !runLiveAnalysis(ctx, logger, c, args, funcName, cmd.OutOrStdout()) {
			os.Exit(1)
		}
	},
}

func init() {
	liveCmd.Flags().StringVar(&funcName, "func", "", "Function name for liveness analysis")
	liveCmd.Flags().BoolVar(&showEdges, "edges", false, "Also print the control flow edges")
}

func runLiveAnalysis(ctx context.Context, logger *zap.Logger, c config.Config, paths []string, funcName string, w io.Writer) bool {
	opts := tdce.OptionsFrom(c, trace.New(c.Trace, logger))
	found := false
	ok := true
	for _, path := range paths {
		m, err := irtext.Load(path)
		if err != nil {
			logger.Error("Failed to parse file", zap.String("path", path), zap.Error(err))
			ok = false
			continue
		}
		for _, f := range m.Funcs {
			if funcName != "" && f.Name != funcName {
				continue
			}
			found = true

			res, err := tdce.Analyze(ctx, f, opts)
			if err != nil {
				logger.Error("Failed to solve liveness", zap.String("func", f.Name), zap.Error(err))
				ok = false
				continue
			}
			fmt.Fprintln(w, formatter.FormatLiveness(f, usedef.Extract(f), res))
			if showEdges {
				if err := cfg.New(f).Fprint(w); err != nil {
					logger.Error("Failed to print edges", zap.Error(err))
				}
				fmt.Fprintln(w)
			}
		}
	}

	if funcName != "" && !found {
		fmt.Fprintf(w, "Function not found: %s\n", funcName)
		return false
	}
	return ok
}
