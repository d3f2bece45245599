package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultSeed returns the shop's opening catalog.
func DefaultSeed() []*Product {
	return []*Product{
		{ID: "1", Name: "Beras Premium 5kg", Price: 75000, Category: "Bahan Pokok", Stock: 50},
		{ID: "2", Name: "Minyak Goreng 2L", Price: 35000, Category: "Bahan Pokok", Stock: 30},
		{ID: "3", Name: "Gula Pasir 1kg", Price: 15000, Category: "Bahan Pokok", Stock: 40},
		{ID: "4", Name: "Telur Ayam 1kg", Price: 28000, Category: "Protein", Stock: 25},
		{ID: "5", Name: "Susu UHT 1L", Price: 18000, Category: "Minuman", Stock: 60},
		{ID: "6", Name: "Indomie Goreng", Price: 3500, Category: "Mie Instan", Stock: 100},
		{ID: "7", Name: "Kopi Sachet (10pcs)", Price: 12000, Category: "Minuman", Stock: 45},
		{ID: "8", Name: "Sabun Mandi", Price: 8000, Category: "Kebersihan", Stock: 35},
		{ID: "9", Name: "Shampo Sachet", Price: 2500, Category: "Kebersihan", Stock: 80},
		{ID: "10", Name: "Teh Celup (25pcs)", Price: 15000, Category: "Minuman", Stock: 40},
		{ID: "11", Name: "Tepung Terigu 1kg", Price: 12000, Category: "Bahan Pokok", Stock: 30},
		{ID: "12", Name: "Kecap Manis 600ml", Price: 16000, Category: "Bumbu", Stock: 25},
	}
}

// LoadSeedFile reads a JSON array of products. An empty path yields DefaultSeed.
func LoadSeedFile(path string) ([]*Product, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	var products []*Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode catalog seed %s: %w", path, err)
	}
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate id %s in seed", ErrInvalidProduct, p.ID)
		}
		seen[p.ID] = true
	}
	return products, nil
}
