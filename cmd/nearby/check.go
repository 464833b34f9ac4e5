package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func checkCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one proximity cycle and print the verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}

			client, engine, err := newEngine(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			v, err := engine.EvaluateOnce(ctx)
			if err != nil {
				return err
			}

			id, near := v.IsNear()
			if !near {
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}

			loc, err := client.GetLocation(ctx, id)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", v, loc.Name)
			return nil
		},
	}
}
