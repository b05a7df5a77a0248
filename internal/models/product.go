package models

// Product is a reference catalog entry.
type Product struct {
	ProductID              FlexibleID `json:"product_id"`
	ClientID               FlexibleID `json:"client_id,omitempty"`
	ManufacturerPartNumber string     `json:"manufacturer_part_number"`
	ProductName            string     `json:"product_name"`
	Description            string     `json:"description"`
	Price                  *Price     `json:"price,omitempty"`
	Status                 string     `json:"status,omitempty"`
}

// ProductFilter narrows catalog browsing.
type ProductFilter struct {
	ClientID string
	Search   string
	Page     int
	PageSize int
}
