package handlers

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/emilythestrangee/reddit-clone/api/internal/auth"
)

var registerOnce sync.Once

// RegisterValidators adds the username and communityname binding tags to
// gin's validator and reports fields by their JSON names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return auth.ValidUsername(fl.Field().String())
		})
		_ = v.RegisterValidation("communityname", func(fl validator.FieldLevel) bool {
			return auth.ValidCommunityName(fl.Field().String())
		})
	})
}
