package catalog

import "time"

// LowStockThreshold marks products that are about to run out.
const LowStockThreshold = 5

type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Stock      int       `json:"stock"`
	LowStock   bool      `json:"lowStock"`
	CategoryID string    `json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IsLowStock derives the lowStock flag; it is recomputed on every stock write.
func IsLowStock(stock int) bool {
	return stock < LowStockThreshold
}
