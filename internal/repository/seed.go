package repository

import (
	"fmt"
	"math"
	"math/rand/v2"

	"storefront/internal/domain"
)

// DefaultSeedCount is how many sample products an empty catalogue receives.
const DefaultSeedCount = 20

const sampleDescription = "This is a high-quality product that meets your daily needs. " +
	"Durable, stylish, and affordable. Order now to get the best deal!"

// sampleProducts builds the placeholder catalogue. Prices fall in [100, 5099]
// and original prices in [5200, 11199], so every product shows a discount.
func sampleProducts(n int, r *rand.Rand) []domain.Product {
	out := make([]domain.Product, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Product{
			ID:            fmt.Sprintf("prod-%d", i),
			Title:         fmt.Sprintf("Sample Product %d - High Quality Item", i),
			Price:         float64(r.IntN(5000) + 100),
			OriginalPrice: float64(r.IntN(6000) + 5200),
			Description:   sampleDescription,
			Category:      domain.Categories[r.IntN(len(domain.Categories))],
			Image:         fmt.Sprintf("https://picsum.photos/seed/%d/300/300", i),
			Rating:        math.Round((r.Float64()*2+3)*10) / 10,
			Reviews:       r.IntN(500),
			SellerID:      SellerID,
		})
	}
	return out
}
