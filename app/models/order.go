package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusFulfilled OrderStatus = "fulfilled"
	StatusCanceled  OrderStatus = "canceled"
)

// OrderStatuses lists every valid status.
var OrderStatuses = []OrderStatus{StatusPending, StatusFulfilled, StatusCanceled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// LineItem references a food; no price is stored per line.
type LineItem struct {
	Food     primitive.ObjectID `bson:"food"     json:"food"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// Order is a persisted order. TotalPrice is computed once at creation.
type Order struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID  `bson:"userId"        json:"userId"`
	Items      []LineItem          `bson:"items"         json:"items"`
	TotalPrice float64             `bson:"totalPrice"    json:"totalPrice"`
	Status     OrderStatus         `bson:"status"        json:"status"`
	Voucher    *primitive.ObjectID `bson:"voucher"       json:"voucher"`
	TableNo    *int                `bson:"tableNo"       json:"tableNo"`
	Note       *string             `bson:"note"          json:"note"`
	CreatedAt  time.Time           `bson:"createdAt"     json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt"     json:"updatedAt"`
}

// ExpandedLineItem carries the referenced food. Food is nil when the menu
// item no longer exists.
type ExpandedLineItem struct {
	Food     *Food `json:"food"`
	Quantity int   `json:"quantity"`
}

// OrderDetail is an order with item and voucher references expanded.
type OrderDetail struct {
	ID         primitive.ObjectID `json:"id"`
	UserID     primitive.ObjectID `json:"userId"`
	Items      []ExpandedLineItem `json:"items"`
	TotalPrice float64            `json:"totalPrice"`
	Status     OrderStatus        `json:"status"`
	Voucher    *Voucher           `json:"voucher"`
	TableNo    *int               `json:"tableNo"`
	Note       *string            `json:"note"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// FoodIDs returns the distinct food ids referenced by o.
func (o Order) FoodIDs() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(o.Items))
	ids := make([]primitive.ObjectID, 0, len(o.Items))
	for _, it := range o.Items {
		if !seen[it.Food] {
			seen[it.Food] = true
			ids = append(ids, it.Food)
		}
	}
	return ids
}

// Expand builds the detail view from the given lookups.
func (o Order) Expand(foods map[primitive.ObjectID]Food, voucher *Voucher) OrderDetail {
	items := make([]ExpandedLineItem, len(o.Items))
	for i, it := range o.Items {
		items[i].Quantity = it.Quantity
		if f, ok := foods[it.Food]; ok {
			f := f
			items[i].Food = &f
		}
	}
	return OrderDetail{
		ID:         o.ID,
		UserID:     o.UserID,
		Items:      items,
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
		Voucher:    voucher,
		TableNo:    o.TableNo,
		Note:       o.Note,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
