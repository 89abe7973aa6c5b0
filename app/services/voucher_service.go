package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/pkg/database"
	"github.com/resor-app/resor/pkg/logger"
)

const voucherAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeAttempts bounds retries when a generated code collides.
const codeAttempts = 5

// GenerateVoucherCode returns a random 8 character uppercase alphanumeric code.
func GenerateVoucherCode() (string, error) {
	b := make([]byte, models.VoucherCodeLen)
	max := big.NewInt(int64(len(voucherAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = voucherAlphabet[n.Int64()]
	}
	return string(b), nil
}

type VoucherService struct {
	vouchers VoucherStore
	generate func() (string, error)
}

func NewVoucherService(vouchers VoucherStore) *VoucherService {
	return &VoucherService{vouchers: vouchers, generate: GenerateVoucherCode}
}

func (s *VoucherService) List(ctx context.Context) ([]models.Voucher, error) {
	vs, err := s.vouchers.FindAll(ctx)
	if vs == nil {
		vs = []models.Voucher{}
	}
	return vs, err
}

// Create issues a voucher with a fresh code.
func (s *VoucherService) Create(ctx context.Context, discount float64) (*models.Voucher, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := s.generate()
		if err != nil {
			return nil, err
		}
		v := &models.Voucher{Code: code, Discount: discount}
		err = s.vouchers.Create(ctx, v)
		if err == nil {
			logger.WithCtx(ctx).Info("voucher created", "code", v.Code, "discount", discount)
			return v, nil
		}
		if !database.IsDuplicate(err) {
			return nil, err
		}
	}
	return nil, errors.New("vouchers: could not generate a unique code")
}
