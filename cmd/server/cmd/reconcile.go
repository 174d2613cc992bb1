package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tefa-events/server/internal/config"
	"github.com/tefa-events/server/internal/domain/orders"
	"github.com/tefa-events/server/internal/storage/postgres"
)

var reconcileRepair bool

// reconcileCmd audits event participant counters against the order
// ledger, the same check the periodic background job runs.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Audit event seat counters against orders",
	Long: `Audit every event's registered participant counter against its
non-cancelled orders and report any drift.

By default this is a read-only audit. With --repair, drifted counters
are reset to the recount.

Examples:
  # Report drifted counters without changing anything
  server reconcile

  # Repair any drifted counters
  server reconcile --repair`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLogger(cfg.Logging)

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		pool, err := postgres.NewPool(ctx, cfg.Database.URL, int32(cfg.Database.MaxConnections))
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		svc := orders.NewService(postgres.NewOrderRepository(pool))
		drifts, err := svc.Reconcile(ctx, logger, reconcileRepair)
		if err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(drifts) == 0 {
			fmt.Fprintln(out, "all counters consistent")
			return nil
		}

		for _, d := range drifts {
			fmt.Fprintf(out, "event %s: counter=%d recount=%d\n", d.EventID, d.Recorded, d.Actual)
		}
		if reconcileRepair {
			fmt.Fprintf(out, "repaired %d counter(s)\n", len(drifts))
		} else {
			fmt.Fprintf(out, "%d drifted counter(s); re-run with --repair to fix\n", len(drifts))
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileRepair, "repair", false, "reset drifted counters to the recount")
}
