package domain

import "time"

type WishlistEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID int64     `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

type WishlistLine struct {
	Entry   WishlistEntry `json:"entry"`
	Product Product       `json:"product"`
}
