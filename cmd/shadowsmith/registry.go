package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ekisa-team/shadowsmith/internal/blueprint"
	"github.com/ekisa-team/shadowsmith/internal/loss"
	"github.com/ekisa-team/shadowsmith/internal/optim"
)

func newRegistryCmd(flags *rootFlags) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:     "registry",
		Aliases: []string{"ls"},
		Short:   "List registered optimizers, criteria, factories and blueprints",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			catalog, dir, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			var data [][]string
			for _, name := range optim.Names() {
				data = append(data, []string{"optimizer", name, ""})
			}
			for _, name := range loss.Names() {
				data = append(data, []string{"criterion", name, ""})
			}
			for _, name := range blueprint.FactoryNames() {
				data = append(data, []string{"factory", name, ""})
			}
			for _, bp := range catalog.List() {
				data = append(data, []string{"blueprint", bp.Name, bp.Source})
			}
			renderTable(cmd.OutOrStdout(), []string{"KIND", "NAME", "SOURCE"}, data)

			if !watch {
				return nil
			}

			slog.Info("Watching blueprints", "dir", dir)
			if err := catalog.Watch(cmd.Context(), dir); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep rescanning the blueprints directory until interrupted")

	return cmd
}
