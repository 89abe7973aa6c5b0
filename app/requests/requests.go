// Package requests holds the typed request bodies for every endpoint that
// accepts one, each with its own validation rules.
package requests

import (
	"strconv"
	"strings"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/pkg/auth"
	"github.com/resor-app/resor/pkg/validate"
)

type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (in RegisterInput) Validate() validate.Errors {
	v := validate.New()
	v.Required("firstName", in.FirstName)
	v.MaxLen("firstName", in.FirstName, 50)
	v.Required("lastName", in.LastName)
	v.MaxLen("lastName", in.LastName, 50)
	v.Required("email", in.Email)
	v.Email("email", in.Email)
	v.Required("password", in.Password)
	v.MaxBytes("password", in.Password, auth.MaxPasswordBytes)
	return v.Errors()
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() validate.Errors {
	v := validate.New()
	v.Required("email", in.Email)
	v.Email("email", in.Email)
	v.Required("password", in.Password)
	v.MaxBytes("password", in.Password, auth.MaxPasswordBytes)
	return v.Errors()
}

type CategoryInput struct {
	Title       string `json:"title"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
}

func (in CategoryInput) validate(v *validate.Validator, prefix string) {
	v.Required(prefix+"title", in.Title)
	v.MaxLen(prefix+"title", in.Title, 255)
	v.URL(prefix+"imageUrl", in.ImageURL)
	v.MaxLen(prefix+"description", in.Description, 255)
}

// CreateCategoriesInput is a bulk create body: a JSON array of categories.
type CreateCategoriesInput []CategoryInput

func (in CreateCategoriesInput) Validate() validate.Errors {
	v := validate.New()
	v.NotEmpty("categories", len(in))
	seen := map[string]bool{}
	for i, c := range in {
		prefix := indexPrefix(i)
		c.validate(v, prefix)
		key := strings.ToLower(strings.TrimSpace(c.Title))
		v.Check(key == "" || !seen[key], prefix+"title", "is duplicated in the request")
		seen[key] = true
	}
	return v.Errors()
}

type FoodInput struct {
	Title       string   `json:"title"`
	ImageURL    string   `json:"imageUrl"`
	Description string   `json:"description"`
	About       string   `json:"about"`
	Ingredients []string `json:"ingredients"`
	Price       float64  `json:"price"`
	Calories    float64  `json:"calories"`
	WaitTime    float64  `json:"waitTime"`
}

func (in FoodInput) validate(v *validate.Validator, prefix string) {
	v.Required(prefix+"title", in.Title)
	v.MaxLen(prefix+"title", in.Title, 50)
	v.URL(prefix+"imageUrl", in.ImageURL)
	v.MaxLen(prefix+"description", in.Description, 255)
	v.MaxLen(prefix+"about", in.About, 255)
	for j, ing := range in.Ingredients {
		v.MaxLen(prefix+"ingredients."+strconv.Itoa(j), ing, 150)
	}
	v.Positive(prefix+"price", in.Price)
	v.Decimals(prefix+"price", in.Price, 2)
	v.Check(in.Calories >= 0, prefix+"calories", "must be positive")
	v.Check(in.WaitTime >= 0, prefix+"waitTime", "must be positive")
}

// AddFoodsInput is a bulk body: a JSON array of foods for one category.
type AddFoodsInput []FoodInput

func (in AddFoodsInput) Validate() validate.Errors {
	v := validate.New()
	v.NotEmpty("foods", len(in))
	for i, f := range in {
		f.validate(v, indexPrefix(i))
	}
	return v.Errors()
}

type CreateVoucherInput struct {
	Discount float64 `json:"discount"`
}

func (in CreateVoucherInput) Validate() validate.Errors {
	v := validate.New()
	v.Between("discount", in.Discount, 5, 100)
	return v.Errors()
}

type OrderItemInput struct {
	FoodID   string `json:"foodId"`
	Quantity int    `json:"quantity"`
}

type CreateOrderInput struct {
	Items   []OrderItemInput `json:"items"`
	Voucher string           `json:"voucher"`
	TableNo *int             `json:"tableNo"`
	Note    string           `json:"note"`
}

func (in CreateOrderInput) Validate() validate.Errors {
	v := validate.New()
	v.NotEmpty("items", len(in.Items))
	for i, it := range in.Items {
		prefix := "items." + strconv.Itoa(i) + "."
		v.Required(prefix+"foodId", it.FoodID)
		v.ObjectID(prefix+"foodId", it.FoodID)
		v.Between(prefix+"quantity", float64(it.Quantity), 1, 20)
	}
	if in.Voucher != "" {
		v.Len("voucher", in.Voucher, models.VoucherCodeLen)
		v.AlphaNum("voucher", in.Voucher)
	}
	if in.TableNo != nil {
		v.Between("tableNo", float64(*in.TableNo), 1, 100)
	}
	v.MaxLen("note", in.Note, 255)
	return v.Errors()
}

type UpdateOrderInput struct {
	Status models.OrderStatus `json:"status"`
}

func (in UpdateOrderInput) Validate() validate.Errors {
	v := validate.New()
	v.Required("status", string(in.Status))
	allowed := make([]string, len(models.OrderStatuses))
	for i, s := range models.OrderStatuses {
		allowed[i] = string(s)
	}
	v.In("status", string(in.Status), allowed...)
	return v.Errors()
}

func indexPrefix(i int) string { return strconv.Itoa(i) + "." }
