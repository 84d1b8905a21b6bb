// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/pyzbuild/pyz/pkg/bootstrap"
	"github.com/pyzbuild/pyz/pkg/types"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidManifest is the sentinel error wrapped by InvalidManifestError.
var ErrInvalidManifest = errors.New("invalid manifest")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// InvalidManifestError lists every field that failed validation.
type InvalidManifestError struct {
	Path        string
	FieldErrors []string
}

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Path, ErrInvalidManifest, strings.Join(e.FieldErrors, ", "))
}

// Unwrap returns ErrInvalidManifest for errors.Is() compatibility.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their file-format names.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "pyident", func(fl validator.FieldLevel) bool {
			return bootstrap.IsIdentifier(fl.Field().String())
		})
		mustRegister(v, "pyversion", func(fl validator.FieldLevel) bool {
			_, err := bootstrap.ParseVersion(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "glob", func(fl validator.FieldLevel) bool {
			return types.GlobPattern(fl.Field().String()).Validate() == nil
		})
		mustRegister(v, "archivepath", func(fl validator.FieldLevel) bool {
			return types.ArchivePath(strings.Trim(fl.Field().String(), "/")).Validate() == nil
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate checks field values and the python range.
func (m *Manifest) Validate() error {
	var fields []string
	if err := validatorInstance().Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields = append(fields, fieldPath(fe)+" ("+fe.Tag()+")")
		}
	}
	if len(fields) == 0 {
		req, err := m.Python.Requirement()
		if err != nil {
			fields = append(fields, err.Error())
		} else if err := req.Validate(); err != nil {
			fields = append(fields, "python: "+err.Error())
		}
	}
	if len(fields) > 0 {
		return &InvalidManifestError{Path: m.Path, FieldErrors: fields}
	}
	return nil
}

// fieldPath drops the struct name from a namespace: "Manifest.include[0].glob" -> "include[0].glob".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
