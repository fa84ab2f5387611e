package request

type CreateDishRequest struct {
	DishName        string  `json:"dish_name"`
	Description     string  `json:"description"`
	SuggestedPrice  float64 `json:"suggested_price"`
	Servings        int     `json:"servings"`
	RequestedTime   string  `json:"time"`
	RequestedDate   string  `json:"date"`
	ContactPhone    string  `json:"contact_phone"`
	Fulfillment     string  `json:"fulfillment"`
	DeliveryAddress string  `json:"delivery_address"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
