package domain

// Product is the catalogue view a cart needs: identity, display name and a
// unit price in minor units. Catalogue browsing itself lives elsewhere.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}
