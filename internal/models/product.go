package models

// Product carries the counters the stock ledger guards. The full catalog
// (media, descriptions, search) is owned by the catalog service; orders only
// need price, stock and the sold counter.
type Product struct {
	BaseModel
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
	Sold  int    `json:"sold"`
}
