package providers

import (
	"errors"

	"github.com/gookit/validate"

	"homeboard/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	v.StopOnError = false
	if v.Validate() {
		return nil
	}
	return errors.New(v.Errors.String())
}
