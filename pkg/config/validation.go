package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// nodeStoreTypes are the accepted node store backends.
var nodeStoreTypes = map[string]bool{
	"memory": true,
	"badger": true,
	"sqlite": true,
}

// contentStoreTypes are the accepted content store backends.
var contentStoreTypes = map[string]bool{
	"memory":     true,
	"filesystem": true,
	"s3":         true,
}

// Validate validates the configuration using struct tags plus custom rules
// the tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if !nodeStoreTypes[cfg.Node.Type] {
		return fmt.Errorf("node.type: unknown backend %q (expected memory, badger, or sqlite)", cfg.Node.Type)
	}
	if !contentStoreTypes[cfg.Content.Type] {
		return fmt.Errorf("content.type: unknown backend %q (expected memory, filesystem, or s3)", cfg.Content.Type)
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly
// messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
