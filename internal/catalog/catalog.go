// Package catalog holds the fixed reference data orders are checked against.
package catalog

import "strings"

// DefaultDistricts are the delivery districts served.
var DefaultDistricts = []string{
	"Colombo", "Gampaha", "Kalutara", "Kandy", "Matale", "Nuwara Eliya",
	"Galle", "Matara", "Hambantota", "Jaffna", "Kilinochchi", "Mannar",
	"Vavuniya", "Mullaitivu", "Batticaloa", "Ampara", "Trincomalee",
	"Kurunegala", "Puttalam", "Anuradhapura", "Polonnaruwa", "Badulla",
	"Monaragala", "Ratnapura", "Kegalle",
}

// DefaultProducts are the product names that can be ordered.
var DefaultProducts = []string{
	"Wooden Dining Table", "Office Chair", "Leather Sofa", "Bookshelf",
	"Coffee Table", "Wardrobe", "Bed Frame", "Night Stand", "TV Stand",
	"Recliner Chair", "Study Table", "Kitchen Cabinet",
}

// DefaultDeliveryTimes are the delivery slots, formatted HH:MM.
var DefaultDeliveryTimes = []string{"10:00", "11:00", "12:00"}

// Catalog is an immutable set of valid order field values.
type Catalog struct {
	districts     []string
	products      []string
	deliveryTimes []string

	districtSet map[string]struct{}
	productSet  map[string]struct{}
	timeSet     map[string]struct{}
}

// New builds a catalog from the given lists. Empty lists fall back to the defaults.
func New(districts, products, deliveryTimes []string) *Catalog {
	c := &Catalog{
		districts:     normalize(districts, DefaultDistricts),
		products:      normalize(products, DefaultProducts),
		deliveryTimes: normalize(deliveryTimes, DefaultDeliveryTimes),
	}
	c.districtSet = toSet(c.districts)
	c.productSet = toSet(c.products)
	c.timeSet = toSet(c.deliveryTimes)
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(nil, nil, nil)
}

// Districts returns a copy of the delivery districts.
func (c *Catalog) Districts() []string { return clone(c.districts) }

// Products returns a copy of the product names.
func (c *Catalog) Products() []string { return clone(c.products) }

// DeliveryTimes returns a copy of the delivery slots.
func (c *Catalog) DeliveryTimes() []string { return clone(c.deliveryTimes) }

// HasDistrict reports whether name is a served district.
func (c *Catalog) HasDistrict(name string) bool {
	_, ok := c.districtSet[name]
	return ok
}

// HasProduct reports whether name is an orderable product.
func (c *Catalog) HasProduct(name string) bool {
	_, ok := c.productSet[name]
	return ok
}

// HasDeliveryTime reports whether slot is a delivery slot.
func (c *Catalog) HasDeliveryTime(slot string) bool {
	_, ok := c.timeSet[slot]
	return ok
}

// Lists returns the three enumerations keyed the way clients expect them.
func (c *Catalog) Lists() map[string][]string {
	return map[string][]string{
		"districts":     c.Districts(),
		"products":      c.Products(),
		"deliveryTimes": c.DeliveryTimes(),
	}
}

func normalize(values, fallback []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return clone(fallback)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func clone(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
