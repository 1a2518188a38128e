package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/ekisa-team/shadowsmith/internal/metadata"
)

func newMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata PATH",
		Short: "Print a metadata file as YAML",
		Long:  "Print a metadata file (pickle, YAML or JSON) as YAML.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := metadata.Load(args[0])
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to encode metadata: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
