package chatbot

import "strings"

// Brand selects which product identity greets the visitor.
type Brand string

const (
	BrandDefault Brand = "default"
	BrandRentals Brand = "rentals"
)

func (b Brand) valid() bool {
	return b == BrandDefault || b == BrandRentals
}

// BrandContext carries the presentation details of a brand into the response builder.
type BrandContext struct {
	Brand       Brand
	DisplayName string
}

// BrandCatalog maps source pages to brands and brands to display names.
type BrandCatalog struct {
	DefaultName         string
	RentalsName         string
	RentalsPathPrefixes []string
}

// DefaultBrandCatalog is used when no configuration is supplied.
func DefaultBrandCatalog() BrandCatalog {
	return BrandCatalog{
		DefaultName:         "PropDesk",
		RentalsName:         "PropDesk Rentas",
		RentalsPathPrefixes: []string{"/rentas", "/rentals"},
	}
}

// Resolve picks the brand for a conversation started on sourcePage. Full URLs
// are reduced to their path before matching.
func (c BrandCatalog) Resolve(sourcePage string) Brand {
	path := strings.ToLower(strings.TrimSpace(sourcePage))
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
		if slash := strings.Index(path, "/"); slash >= 0 {
			path = path[slash:]
		} else {
			path = "/"
		}
	}
	for _, prefix := range c.RentalsPathPrefixes {
		prefix = strings.ToLower(strings.TrimSpace(prefix))
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return BrandRentals
		}
	}
	return BrandDefault
}

// Context returns the presentation context for b.
func (c BrandCatalog) Context(b Brand) BrandContext {
	if b == BrandRentals {
		return BrandContext{Brand: BrandRentals, DisplayName: c.RentalsName}
	}
	return BrandContext{Brand: BrandDefault, DisplayName: c.DefaultName}
}
