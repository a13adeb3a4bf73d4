package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medical_shop/pkg/tokens"
)

const (
	RoleUser  = "user"
	RoleAdmin = tokens.RoleAdmin
)

type User struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"       json:"id"`
	Name                string     `gorm:"not null"                   json:"name"`
	Email               string     `gorm:"uniqueIndex;not null"       json:"email"`
	PasswordHash        string     `gorm:"not null"                   json:"-"`
	Phone               string     `                                  json:"phone,omitempty"`
	Address             string     `                                  json:"address,omitempty"`
	Role                string     `gorm:"not null;default:user"      json:"role"`
	ResetTokenHash      string     `gorm:"index"                      json:"-"`
	ResetTokenExpiresAt *time.Time `                                  json:"-"`
	CreatedAt           time.Time  `                                  json:"created_at"`
}

type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"   json:"id"`
	Name      string     `gorm:"not null"               json:"name"`
	Slug      string     `gorm:"uniqueIndex;not null"   json:"slug"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index"        json:"parent_id"`
	CreatedAt time.Time  `                              json:"created_at"`
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"               json:"id"`
	Name        string          `gorm:"not null"                           json:"name"`
	Description string          `gorm:"not null;default:''"                json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"        json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock>=0"  json:"stock"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"                    json:"category_id"`
	ImageURL    string          `                                          json:"image_url"`
	CreatedAt   time.Time       `                                          json:"created_at"`
	UpdatedAt   time.Time       `                                          json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                            json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_product;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_product;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1;check:quantity>0"             json:"quantity"`
	CreatedAt time.Time `                                                       json:"created_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"           json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"       json:"user_id"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"total_amount"`
	Status          string          `gorm:"not null;default:pending"       json:"status"`
	ShippingAddress string          `                                      json:"shipping_address"`
	Phone           string          `                                      json:"phone"`
	CreatedAt       time.Time       `gorm:"index"                          json:"created_at"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"             json:"items,omitempty"`
}

// OrderItem keeps the product name and price as they were at checkout.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"              json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"          json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"                json:"product_id"`
	ProductName string          `gorm:"not null"                          json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"unit_price"`
	Quantity    int             `gorm:"not null;check:quantity>0"         json:"quantity"`
}

type FAQ struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Question string    `gorm:"not null"             json:"question"`
	Answer   string    `gorm:"not null"             json:"answer"`
	Position int       `gorm:"not null;default:0"   json:"-"`
}

func (FAQ) TableName() string {
	return "faqs"
}

func All() []any {
	return []any{&User{}, &Category{}, &Product{}, &CartItem{}, &Order{}, &OrderItem{}, &FAQ{}}
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error      { newID(&u.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error  { newID(&c.ID); return nil }
func (p *Product) BeforeCreate(*gorm.DB) error   { newID(&p.ID); return nil }
func (c *CartItem) BeforeCreate(*gorm.DB) error  { newID(&c.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error     { newID(&o.ID); return nil }
func (i *OrderItem) BeforeCreate(*gorm.DB) error { newID(&i.ID); return nil }
func (f *FAQ) BeforeCreate(*gorm.DB) error       { newID(&f.ID); return nil }
