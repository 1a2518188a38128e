package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNoWeights = errors.New("no weights file given and shadow.weights is not set")

func newRestoreCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "restore [WEIGHTS]",
		Short: "Restore a shadow model from saved weights",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}

			path := a.cfg.Shadow.Weights
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return errNoWeights
			}

			restored, err := a.assembler.Restore(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "weights: %s\ncriterion: %s\n\n", path, restored.Criterion.Name())
			renderParameters(out, restored.Model)

			return nil
		},
	}
}
