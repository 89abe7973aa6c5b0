package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/pkg/database"
)

type VoucherRepository struct {
	col *mongo.Collection
}

func NewVoucherRepository(db *mongo.Database) *VoucherRepository {
	return &VoucherRepository{col: db.Collection(database.Vouchers)}
}

func (r *VoucherRepository) Create(ctx context.Context, v *models.Voucher) error {
	defer observe(database.Vouchers, "insert")()
	v.ID = primitive.NewObjectID()
	v.CreatedAt = now()
	v.UpdatedAt = v.CreatedAt
	_, err := r.col.InsertOne(ctx, v)
	return dup(err)
}

func (r *VoucherRepository) FindAll(ctx context.Context) ([]models.Voucher, error) {
	defer observe(database.Vouchers, "find")()
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Voucher{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VoucherRepository) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	defer observe(database.Vouchers, "find")()
	var v models.Voucher
	ok, err := findOne(r.col.FindOne(ctx, bson.M{"code": code}), &v)
	if !ok {
		return nil, err
	}
	return &v, nil
}

func (r *VoucherRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	defer observe(database.Vouchers, "find")()
	var v models.Voucher
	ok, err := findOne(r.col.FindOne(ctx, bson.M{"_id": id}), &v)
	if !ok {
		return nil, err
	}
	return &v, nil
}

// Redeem flips isUsed in a single conditional update. Of two concurrent
// callers only one matches {isUsed: false}.
func (r *VoucherRepository) Redeem(ctx context.Context, code string) (*models.Voucher, error) {
	defer observe(database.Vouchers, "redeem")()
	var v models.Voucher
	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"code": code, "isUsed": false},
		bson.M{"$set": bson.M{"isUsed": true, "updatedAt": now()}},
		afterUpdate,
	)
	ok, err := findOne(res, &v)
	if !ok {
		return nil, err
	}
	return &v, nil
}

func (r *VoucherRepository) Release(ctx context.Context, id primitive.ObjectID) error {
	defer observe(database.Vouchers, "release")()
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"isUsed": false, "updatedAt": now()}})
	return err
}
