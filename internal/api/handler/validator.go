package handler

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"smart-campus/backend/internal/timeline"
)

// RegisterValidators 向 gin 的校验器注册自定义 tag
//
//	hhmm    — 24 小时制 "HH:MM"
//	isodate — "YYYY-MM-DD"
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin 校验引擎不是 validator/v10")
	}
	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		return err
	}
	return v.RegisterValidation("isodate", validateISODate)
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, err := timeline.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := timeline.ParseDate(fl.Field().String())
	return err == nil
}
