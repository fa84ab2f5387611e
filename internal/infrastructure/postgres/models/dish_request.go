package models

import "time"

type DishRequestModel struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	Code            string `gorm:"uniqueIndex:idx_dish_request_code"`
	CustomerID      string `gorm:"index:idx_customer_created"`
	DishName        string
	Description     string
	SuggestedPrice  float64
	Servings        int
	RequestedTime   string
	RequestedDate   string
	ContactPhone    string
	FulfillmentKind string
	DeliveryAddress string
	Status          string    `gorm:"index:idx_request_status_created"`
	CreatedAt       time.Time `gorm:"index:idx_customer_created;index:idx_request_status_created"`
	UpdatedAt       time.Time
}
