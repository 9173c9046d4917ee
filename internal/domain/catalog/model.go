package catalog

// Variant is the compact variant shape returned to the voice assistant.
type Variant struct {
	Title     string `json:"title"`
	Price     string `json:"price"`
	Available bool   `json:"available"`
}

// Product is one catalog item as the assistant sees it.
type Product struct {
	Title     string    `json:"title"`
	Handle    string    `json:"handle"`
	Price     string    `json:"price"`
	Currency  string    `json:"currency"`
	Available bool      `json:"available"`
	Variants  []Variant `json:"variants"`
}

// ProductList is the payload of both catalog functions.
type ProductList struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
	Query    string    `json:"query,omitempty"`
}

// GetProductsParams are the parameters of get_products.
type GetProductsParams struct {
	Limit *int `json:"limit,omitempty" validate:"omitempty,min=1" jsonschema:"description=Maximum number of products to return,minimum=1,maximum=25,default=5"`
}

// SearchProductsParams are the parameters of search_products.
type SearchProductsParams struct {
	Query string `json:"query" validate:"required" jsonschema:"required,description=Keyword to search the catalog for"`
	Limit *int   `json:"limit,omitempty" validate:"omitempty,min=1" jsonschema:"description=Maximum number of products to return,minimum=1,maximum=25,default=5"`
}

type productsResponse struct {
	Shop struct {
		CurrencyCode string `json:"currencyCode"`
	} `json:"shop"`
	Products struct {
		Edges []struct {
			Node productNode `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

type productNode struct {
	Title    string `json:"title"`
	Handle   string `json:"handle"`
	Variants struct {
		Edges []struct {
			Node struct {
				Title            string `json:"title"`
				Price            string `json:"price"`
				AvailableForSale bool   `json:"availableForSale"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}
