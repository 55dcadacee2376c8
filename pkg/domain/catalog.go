package domain

type ItemID string

// Product is display metadata carried alongside a catalog entry. The ordering
// core never interprets it.
type Product struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageRef    string  `json:"image_ref"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
}

// CatalogItem is a purchasable menu entry. Price is in minor units.
type CatalogItem struct {
	ID      ItemID  `json:"id"`
	Price   int64   `json:"price"`
	Stock   int     `json:"stock"`
	Product Product `json:"product"`
}

// StockChange is one line of a batch stock decrement.
type StockChange struct {
	ItemID ItemID
	Amount int
}

// DefaultMenu returns the canteen menu the service starts with.
func DefaultMenu() []CatalogItem {
	return []CatalogItem{
		{
			ID:    "vada-pao",
			Price: 25,
			Stock: 15,
			Product: Product{
				Name:        "Vada Pao",
				Description: "Mumbai's favorite street food with spicy potato filling",
				ImageRef:    "/vada-pao-mumbai-street-food.jpg",
				Category:    "snacks",
				Rating:      4.5,
			},
		},
		{
			ID:    "filter-coffee",
			Price: 30,
			Stock: 20,
			Product: Product{
				Name:        "Filter Coffee",
				Description: "Authentic South Indian filter coffee with perfect blend",
				ImageRef:    "/south-indian-filter-coffee.jpg",
				Category:    "beverages",
				Rating:      4.8,
			},
		},
		{
			ID:    "rajma-rice",
			Price: 80,
			Stock: 12,
			Product: Product{
				Name:        "Rajma Rice",
				Description: "Hearty kidney bean curry served with steamed basmati rice",
				ImageRef:    "/rajma-rice-indian-curry.jpg",
				Category:    "meals",
				Rating:      4.6,
			},
		},
		{
			ID:    "masala-dosa",
			Price: 60,
			Stock: 8,
			Product: Product{
				Name:        "Masala Dosa",
				Description: "Crispy crepe filled with spiced potato mixture",
				ImageRef:    "/masala-dosa-south-indian.png",
				Category:    "meals",
				Rating:      4.7,
			},
		},
		{
			ID:    "chai",
			Price: 15,
			Stock: 25,
			Product: Product{
				Name:        "Chai",
				Description: "Traditional Indian spiced tea",
				ImageRef:    "/indian-chai-tea.jpg",
				Category:    "beverages",
				Rating:      4.4,
			},
		},
	}
}
