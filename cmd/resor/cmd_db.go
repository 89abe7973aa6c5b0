package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resor-app/resor/app/requests"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/config"
	"github.com/resor-app/resor/database/seeders"
	"github.com/resor-app/resor/internal/kernel"
	"github.com/resor-app/resor/pkg/database"
	"github.com/resor-app/resor/pkg/logger"
)

// openStores loads config and opens the configured store backend.
func openStores(ctx context.Context) (kernel.Stores, func(), error) {
	if err := config.Load(); err != nil {
		return kernel.Stores{}, nil, err
	}
	logger.Setup()
	if config.DatabaseDriver() == "memory" {
		return kernel.MemoryStores(), func() {}, nil
	}
	client, db, err := kernel.ConnectMongo(ctx)
	if err != nil {
		return kernel.Stores{}, nil, err
	}
	return kernel.MongoStores(db), func() { _ = database.Disconnect(client) }, nil
}

// resor migrate: create the MongoDB indexes.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Ensure MongoDB collection indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		ctx := cmd.Context()
		client, db, err := kernel.ConnectMongo(ctx)
		if err != nil {
			return err
		}
		defer database.Disconnect(client) //nolint:errcheck

		if err := database.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Indexes are up to date.")
		return nil
	},
}

// resor seed [admin|menu ...]
var seedCmd = &cobra.Command{
	Use:   "seed [seeder...]",
	Short: "Create the admin account and a sample menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeFn, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return seeders.RunAll(cmd.Context(), st, args...)
	},
}

var voucherDiscount float64

// resor voucher:create --discount 20
var voucherCreateCmd = &cobra.Command{
	Use:   "voucher:create",
	Short: "Issue a single-use voucher",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := requests.CreateVoucherInput{Discount: voucherDiscount}
		if err := in.Validate().Err(); err != nil {
			return err
		}
		st, closeFn, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		v, err := services.NewVoucherService(st.Vouchers).Create(cmd.Context(), in.Discount)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g%%\n", v.Code, v.Discount)
		return nil
	},
}

func init() {
	voucherCreateCmd.Flags().Float64Var(&voucherDiscount, "discount", 10, "discount percentage (5-100)")
}
