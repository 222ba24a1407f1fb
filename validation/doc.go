// Package validation checks options before a stream is built.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report a single
// configuration AppError listing every failing field.
//
// # Struct Tag Validation
//
//	type Options struct {
//	    BatchSize int `mapstructure:"batch_size" validate:"gt=0"`
//	}
//	err := validation.Validate(opts)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Custom(ceiling > 0, "f0_ceiling", "must be positive")
//	err := v.Validate()
package validation
