package bankroll

import "fmt"

// Item is a reward in the redemption shop
type Item struct {
	ID       string
	Name     string
	UnitCost int
	Variable bool // quantity may be any positive integer
}

// Catalog is the fixed list of redeemable rewards
type Catalog []Item

// DefaultCatalog returns the clubhouse reward shop
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "sticker", Name: "Trash Pandas sticker", UnitCost: 250},
		{ID: "scarf", Name: "Supporters' scarf", UnitCost: 1500},
		{ID: "jersey", Name: "Signed match jersey", UnitCost: 5000},
		{ID: "photo", Name: "Photo with the squad", UnitCost: 10000},
		{ID: "pints", Name: "Pint at the clubhouse", UnitCost: 300, Variable: true},
	}
}

// Lookup finds an item by ID
func (c Catalog) Lookup(id string) (Item, bool) {
	for _, item := range c {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Validate checks IDs are unique and costs positive
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c))
	for _, item := range c {
		if item.ID == "" {
			return fmt.Errorf("catalog item %q: id is required", item.Name)
		}
		if seen[item.ID] {
			return fmt.Errorf("catalog item %s: duplicate id", item.ID)
		}
		seen[item.ID] = true
		if item.UnitCost <= 0 {
			return fmt.Errorf("catalog item %s: cost must be positive", item.ID)
		}
	}
	return nil
}
