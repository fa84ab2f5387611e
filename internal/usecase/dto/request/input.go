package requestdto

type CreateRequestInput struct {
	DishName        string
	Description     string
	SuggestedPrice  float64
	Servings        int
	RequestedTime   string
	RequestedDate   string
	ContactPhone    string
	Fulfillment     string // "pickup" | "delivery"
	DeliveryAddress string
}
