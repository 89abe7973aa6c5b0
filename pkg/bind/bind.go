// Package bind decodes an HTTP request body into a request struct and runs
// the struct's own validation rules.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/resor-app/resor/config"
	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/validate"
)

// Validatable is implemented by request structs.
type Validatable interface {
	Validate() validate.Errors
}

func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || n <= 0 {
		return 1 << 20
	}
	return n
}

// JSON decodes r.Body into dest. Malformed or oversized bodies and failed
// validation all come back as an apperr validation error.
func JSON(r *http.Request, dest interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes())
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Validation(fmt.Sprintf("request body too large (max %d bytes)", maxErr.Limit), nil)
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is empty", nil)
		default:
			return apperr.Validation("invalid JSON: "+err.Error(), nil)
		}
	}

	if v, ok := dest.(Validatable); ok {
		return v.Validate().Err()
	}
	return nil
}
