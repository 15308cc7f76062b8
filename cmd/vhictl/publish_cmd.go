package main

import (
	"fmt"

	kafkaadapter "github.com/couchcryptid/vhi-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/vhi-dashboard/internal/pipeline"
	"github.com/spf13/cobra"
)

func newPublishCmd(a *app) *cobra.Command {
	var topic string

	cmd := &cobra.Command{
		Use:   "publish [--topic <name>]",
		Short: "Load the data directory and publish every observation to Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.load(cmd.Context())
			if err != nil {
				return err
			}

			cfg := *a.cfg
			if topic != "" {
				cfg.KafkaTopic = topic
			}
			writer := kafkaadapter.NewWriter(&cfg, a.logger)
			defer func() {
				if err := writer.Close(); err != nil {
					a.logger.Error("kafka writer close error", "error", err)
				}
			}()

			n, err := pipeline.New(writer, a.logger, a.metrics, cfg.BatchSize).Publish(cmd.Context(), ds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d observations to %s (snapshot %s)\n", n, cfg.KafkaTopic, ds.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "topic override (default $KAFKA_TOPIC)")
	return cmd
}
