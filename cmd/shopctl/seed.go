package main

import (
	"context"
	"errors"
	"fmt"

	"storefront-backend/apperrors"
	"storefront-backend/models"

	"github.com/spf13/cobra"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@storefront.local"
	welcomePromoCode     = "WELCOME10"
)

var sampleProducts = []models.Product{
	{Name: "Oak Desk Lamp", SKU: "LAMP-OAK-01", Category: "lighting", Price: 49.90, Stock: 25, IsFeatured: true,
		Description: "Adjustable desk lamp with a solid oak base."},
	{Name: "Linen Cushion", SKU: "CUSH-LIN-01", Category: "textiles", Price: 24.50, Stock: 60,
		Description: "Washed linen cushion cover, 45x45cm."},
	{Name: "Ceramic Mug", SKU: "MUG-CER-01", Category: "kitchen", Price: 12.00, Stock: 120, IsFeatured: true,
		Description: "Hand-glazed stoneware mug, 350ml."},
	{Name: "Wool Throw", SKU: "THRW-WOL-01", Category: "textiles", Price: 89.00, Stock: 15,
		Description: "Merino wool throw blanket."},
	{Name: "Walnut Shelf", SKU: "SHLF-WAL-01", Category: "furniture", Price: 129.00, Stock: 8,
		Description: "Floating wall shelf in oiled walnut."},
}

func newSeedCmd(open openStoreFunc) *cobra.Command {
	var (
		reset         bool
		adminPassword string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample products, the welcome promo code and a default superadmin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, func(ctx context.Context, s *store) error {
				out := cmd.OutOrStdout()
				if reset {
					if err := s.reset(ctx); err != nil {
						return err
					}
					fmt.Fprintln(out, "Database reset")
				}

				created := 0
				for _, p := range sampleProducts {
					product := p
					product.IsActive = true
					err := s.products.Create(ctx, &product)
					if errors.Is(err, apperrors.ErrConflict) {
						continue
					}
					if err != nil {
						return fmt.Errorf("seed product %s: %w", p.SKU, err)
					}
					created++
				}
				fmt.Fprintf(out, "Products: %d created, %d already present\n", created, len(sampleProducts)-created)

				_, err := s.promos.Create(ctx, models.CreatePromoCodeRequest{
					Code:  welcomePromoCode,
					Type:  models.PromoPercentage,
					Value: 10,
				})
				switch {
				case errors.Is(err, apperrors.ErrConflict):
					fmt.Fprintf(out, "Promo code %s already present\n", welcomePromoCode)
				case err != nil:
					return fmt.Errorf("seed promo code: %w", err)
				default:
					fmt.Fprintf(out, "Promo code %s created\n", welcomePromoCode)
				}

				made, err := s.admins.EnsureSuperAdmin(ctx, defaultAdminUsername, defaultAdminEmail, adminPassword)
				if err != nil {
					return fmt.Errorf("seed superadmin: %w", err)
				}
				if made {
					fmt.Fprintf(out, "Superadmin %q created; change its password after first login\n", defaultAdminUsername)
				} else {
					fmt.Fprintln(out, "Admin accounts already exist, superadmin not created")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop all collections first")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "ChangeMe123!", "password for the default superadmin")
	return cmd
}
