package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tdce/formatter"
	"github.com/gnolang/tdce/internal"
	tt "github.com/gnolang/tdce/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-run elimination whenever an input file changes",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"."}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		engine, err := internal.NewEngine(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}

		out := cmd.OutOrStdout()
		err = engine.Watch(ctx, args, func(r tt.FileReport) {
			fmt.Fprint(out, formatter.FormatReport(r))
		})
		if err != nil {
			logger.Fatal("Failed to start watching", zap.Error(err))
		}
		logger.Info("Watching for changes", zap.Strings("dirs", args))
		<-ctx.Done()
	},
}
