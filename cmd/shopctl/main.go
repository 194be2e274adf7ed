// Command shopctl runs maintenance tasks against the storefront database and API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"storefront-backend/config"
	"storefront-backend/logger"
	"storefront-backend/repository"
	"storefront-backend/services"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

// store is what the database commands work against.
type store struct {
	admins   *services.AdminService
	products repository.ProductRepository
	promos   *services.PromoService
	reset    func(ctx context.Context) error
	close    func()
}

type openStoreFunc func(ctx context.Context) (*store, error)

func main() {
	if err := newRootCmd(openMongoStore, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open openStoreFunc, out io.Writer) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Storefront maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env := "production"
			if verbose {
				env = "development"
			}
			return logger.Initialize(env)
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "human readable debug logging")

	root.AddCommand(
		newAdminCmd(open),
		newSeedCmd(open),
		newDBCmd(open),
		newCheckCmd(),
	)
	return root
}

func openMongoStore(ctx context.Context) (*store, error) {
	cfg, err := config.LoadForTools()
	if err != nil {
		return nil, err
	}
	client, err := config.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	admins := repository.NewAdminRepository(db)
	return &store{
		admins:   services.NewAdminService(admins, nil),
		products: repository.NewProductRepository(db),
		promos:   services.NewPromoService(repository.NewPromoCodeRepository(db)),
		reset:    func(ctx context.Context) error { return resetDatabase(ctx, db) },
		close:    func() { _ = client.Disconnect(context.Background()) },
	}, nil
}

func resetDatabase(ctx context.Context, db *mongo.Database) error {
	for _, name := range repository.AllCollections() {
		if err := db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	return repository.EnsureIndexes(ctx, db)
}

// withStore opens the store for the duration of fn.
func withStore(cmd *cobra.Command, open openStoreFunc, fn func(ctx context.Context, s *store) error) error {
	ctx := commandContext(cmd)
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}
