package sites

import (
	"strings"

	"github.com/Houeta/pricewatch/internal/models"
)

// componentCategories builds the usual slug -> path table for shops that nest components
// under a common prefix.
func componentCategories(paths [10]string) map[string]string {
	slugs := [10]string{
		"laptop", "cpu", "graphics-card", "ram", "motherboard",
		"storage", "power-supply", "case", "cooling", "monitor",
	}
	out := make(map[string]string, len(slugs))
	for i, slug := range slugs {
		out[slug] = paths[i]
	}

	return out
}

// CategoryNames are display names for the category slugs the built-in shops use.
var CategoryNames = map[string]string{
	"laptop":        "Laptop",
	"cpu":           "Processor",
	"graphics-card": "Graphics Card",
	"ram":           "RAM",
	"motherboard":   "Motherboard",
	"storage":       "Storage",
	"power-supply":  "Power Supply",
	"case":          "Casing",
	"cooling":       "Cooling",
	"monitor":       "Monitor",
}

// Default returns the compiled-in registry.
func Default() *Registry {
	reg, err := NewRegistry(defaultSites())
	if err != nil {
		panic(err)
	}

	return reg
}

func defaultSites() map[string]Site {
	return map[string]Site{
		"startech.com.bd": {
			Name:    "Star Tech",
			BaseURL: "https://www.startech.com.bd",
			Selectors: Selectors{
				Container: ".p-item", Name: "h4.p-item-name", Price: ".p-item-price", Link: "a",
			},
			DefaultPaths: []string{"/component/laptop", "/component/processor", "/component/graphics-card"},
			Categories: componentCategories([10]string{
				"/component/laptop", "/component/processor", "/component/graphics-card", "/component/ram",
				"/component/motherboard", "/component/hard-disk-drive", "/component/power-supply",
				"/component/casing", "/component/cpu-cooler", "/monitor",
			}),
		},
		"ryans.com": {
			Name:    "Ryans",
			BaseURL: "https://www.ryanscomputers.com",
			Selectors: Selectors{
				Container: ".category-products-grid .item", Name: "h2.product-name a",
				Price: ".special-price .price", Link: "h2.product-name a",
			},
			DefaultPaths: []string{
				"/category/laptop-all-71", "/category/processor-all-196", "/category/graphics-card-all-106",
			},
			Categories: componentCategories([10]string{
				"/category/laptop-all-71", "/category/processor-all-196", "/category/graphics-card-all-106",
				"/category/ram-all-197", "/category/motherboard-all-195", "/category/hard-disk-all-198",
				"/category/power-supply-all-199", "/category/casing-all-194", "/category/cooling-device-all-201",
				"/category/monitor-all-85",
			}),
		},
		"techlandbd.com": {
			Name:    "TechLand",
			BaseURL: "https://www.techlandbd.com",
			Selectors: Selectors{
				Container: ".product-item", Name: ".product-title a", Price: ".price", Link: ".product-title a",
			},
			DefaultPaths: []string{
				"/computers/laptops", "/computer-components/processor", "/computer-components/graphics-card",
			},
			Categories: componentCategories([10]string{
				"/computers/laptops", "/computer-components/processor", "/computer-components/graphics-card",
				"/computer-components/ram-memory", "/computer-components/motherboard",
				"/computer-components/storage-devices", "/computer-components/power-supply",
				"/computer-components/casing", "/computer-components/cooling-solutions", "/monitors",
			}),
		},
		"ultratech.com.bd": {
			Name:    "Ultra Tech",
			BaseURL: "https://ultratech.com.bd",
			Selectors: Selectors{
				Container: ".product-box", Name: ".product-box-heading a",
				Price: ".product-price", Link: ".product-box-heading a",
			},
			DefaultPaths: []string{
				"/product-category/laptop", "/product-category/processor", "/product-category/graphics-card",
			},
			Categories: componentCategories([10]string{
				"/product-category/laptop", "/product-category/processor", "/product-category/graphics-card",
				"/product-category/ram", "/product-category/motherboard", "/product-category/storage",
				"/product-category/power-supply", "/product-category/casing", "/product-category/cooling",
				"/product-category/monitor",
			}),
		},
		"binarylogic.com.bd": {
			Name:    "Binary Logic",
			BaseURL: "https://www.binarylogic.com.bd",
			Selectors: Selectors{
				Container: ".product-item", Name: ".product-item-link", Price: ".price", Link: ".product-item-link",
			},
			DefaultPaths: []string{"/laptop", "/processor", "/graphics-card"},
			Categories:   flatCategories(),
		},
		"skyland.com.bd": {
			Name:    "Skyland",
			BaseURL: "https://www.skyland.com.bd",
			Selectors: Selectors{
				Container: ".product-layout", Name: ".name a", Price: ".price-new", Link: ".name a",
			},
			DefaultPaths: []string{"/laptop", "/processor", "/graphics-card"},
			Categories:   flatCategories(),
		},
	}
}

func flatCategories() map[string]string {
	return componentCategories([10]string{
		"/laptop", "/processor", "/graphics-card", "/ram", "/motherboard",
		"/storage", "/power-supply", "/casing", "/cooling", "/monitor",
	})
}

// SeedCategories returns one category per slug used by the registry. Names come from
// CategoryNames, falling back to the slug itself.
func (r *Registry) SeedCategories() []models.Category {
	slugs := r.CategorySlugs()
	categories := make([]models.Category, 0, len(slugs))
	for _, slug := range slugs {
		name, ok := CategoryNames[slug]
		if !ok {
			name = strings.ReplaceAll(slug, "-", " ")
		}
		categories = append(categories, models.Category{Name: name, Slug: slug})
	}

	return categories
}
