package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ekisa-team/shadowsmith/internal/state"
)

func newBuildCmd(flags *rootFlags) *cobra.Command {
	var (
		savePath string
		dtype    string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a fresh shadow model",
		Long: "Build a fresh shadow model with its optimizer and criterion. Pieces the\n" +
			"shadow section leaves out are taken from the target.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}

			replica, err := a.assembler.BuildFresh()
			if err != nil {
				return err
			}

			source := "target"
			if bp := a.assembler.Blueprint(); bp != nil {
				source = bp.Name
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "blueprint: %s\noptimizer: %s (lr %g)\ncriterion: %s\n\n",
				source, replica.Optimizer.Name(), replica.Optimizer.LR(), replica.Criterion.Name())
			renderParameters(out, replica.Model)

			if savePath == "" {
				return nil
			}

			if !filepath.IsAbs(savePath) && a.cfg.Storage.ModelsDir != "" {
				savePath = filepath.Join(relativeTo(filepath.Dir(flags.configPath), a.cfg.Storage.ModelsDir), savePath)
			}

			err = state.Save(savePath, replica.Model,
				state.WithDType(state.DType(strings.ToUpper(dtype))),
				state.WithMetadata(map[string]string{"blueprint": source}),
			)
			if err != nil {
				return fmt.Errorf("failed to save model: %w", err)
			}

			slog.Info("Saved model", "path", savePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&savePath, "save", "", "Write the initial weights to this SafeTensors file")
	cmd.Flags().StringVar(&dtype, "dtype", string(state.F64), "Element type for saved weights (F64, F32, F16, BF16)")

	return cmd
}
