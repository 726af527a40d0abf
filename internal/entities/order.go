package entities

import "time"

// Order is placed by an author and lists books with quantities.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	OrderedAt time.Time `gorm:"not null" json:"ordered_at"`

	Author *Author     `json:"author,omitempty"`
	Lines  []BookOrder `gorm:"constraint:OnDelete:CASCADE" json:"books"`
}

func (Order) TableName() string {
	return "orders"
}

// BookOrder is one order line. A book appears at most once per order.
type BookOrder struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BookID   uint `gorm:"uniqueIndex:idx_unique_book_order;not null" json:"book_id"`
	OrderID  uint `gorm:"uniqueIndex:idx_unique_book_order;not null" json:"order_id"`
	Quantity int  `gorm:"not null;default:1" json:"quantity"`

	Book *Book `json:"book,omitempty"`
}

func (BookOrder) TableName() string {
	return "book_orders"
}
