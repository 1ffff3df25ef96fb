package entity

type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Cost        float64  `json:"cost"` // purchase cost, visible to admins only
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"image_url"`
	Images      []string `json:"images,omitempty"`
	Details     string   `json:"details,omitempty"`
	Active      bool     `json:"active"`
}
