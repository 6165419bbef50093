package server

import (
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
)

const maxWalletLength = 128

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("wallet", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return value != "" && len(value) <= maxWalletLength
		})
	})
	return validate
}

// bind decodes and validates a JSON request body, replying 400 itself on
// failure.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := readJSON(w, r, dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := requestValidator().Struct(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}
