package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VoucherCodeLen is the length of every voucher code.
const VoucherCodeLen = 8

// Voucher is a single-use percentage discount.
type Voucher struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code      string             `bson:"code"          json:"code"`
	Discount  float64            `bson:"discount"      json:"discount"`
	IsUsed    bool               `bson:"isUsed"        json:"isUsed"`
	CreatedAt time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"     json:"updatedAt"`
}

// Apply returns amount reduced by the voucher's discount percentage.
func (v Voucher) Apply(amount float64) float64 {
	return amount - amount*v.Discount/100
}
