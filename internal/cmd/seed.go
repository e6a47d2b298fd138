package cmd

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"storefront-service/internal/config"
	"storefront-service/internal/database"
	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
	"time"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample catalog",
	Long:  "Insert the sample catalog. Skipped when products already exist unless --force is given.",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "insert even if the catalog is not empty")
	rootCmd.AddCommand(seedCmd)
}

func sampleCatalog() []entity.ProductInput {
	const img = "https://images.unsplash.com/photo-1579783902614-a3fb3927b6a5?w=500"
	return []entity.ProductInput{
		{Name: "Abstract Canvas Print", Description: "Beautiful abstract art piece, 24x36 inches", Price: decimal.RequireFromString("899.99"), Image: img, Stock: 15, Category: "Canvas Prints"},
		{Name: "Watercolor Landscape", Description: "Painted watercolor landscape, 18x24 inches", Price: decimal.RequireFromString("1299.99"), Image: img, Stock: 8, Category: "Original Paintings"},
		{Name: "Modern Art Poster", Description: "Minimalist poster design, 16x20 inches", Price: decimal.RequireFromString("399.99"), Image: img, Stock: 50, Category: "Posters"},
		{Name: "Acrylic Portrait", Description: "Custom acrylic portrait, 20x30 inches", Price: decimal.RequireFromString("1999.99"), Image: "https://images.unsplash.com/photo-1578301978693-85fa9c0320b9?w=500", Stock: 5, Category: "Original Paintings"},
		{Name: "Art Print Set", Description: "Set of 3 coordinating prints, 12x16 inches each", Price: decimal.RequireFromString("799.99"), Image: "https://images.unsplash.com/photo-1561214115-f2f134cc4912?w=500", Stock: 25, Category: "Print Sets"},
	}
}

// seedCatalog inserts the sample products in one transaction and returns
// how many were written.
func seedCatalog(ctx context.Context, store *repository.Store, force bool) (int, error) {
	if !force {
		n, err := store.Products.CountProducts(ctx)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			logger.Info().Msgf("Catalog already has %d products, skipping seed", n)
			return 0, nil
		}
	}

	catalog := sampleCatalog()
	now := time.Now().UTC().Truncate(time.Second)
	err := store.WithTx(ctx, func(tx *repository.Tx) error {
		for i, in := range catalog {
			p := &entity.Product{
				ID:          uuid.NewString(),
				Name:        in.Name,
				Description: in.Description,
				Price:       in.Price,
				Image:       in.Image,
				Stock:       in.Stock,
				Category:    in.Category,
				// Spread creation times so "newest" ordering is stable.
				CreatedAt: now.Add(time.Duration(i) * time.Second),
			}
			if _, err := tx.Products.CreateProduct(ctx, p); err != nil {
				return fmt.Errorf("insert %s: %w", in.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(catalog), nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	db, err := database.OpenAndMigrate(ctx, dbOptions(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := seedCatalog(ctx, repository.NewStore(db), seedForce)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", n)
	return nil
}
