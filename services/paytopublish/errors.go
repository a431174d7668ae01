package paytopublish

import "errors"

var (
	// ErrTargetNotFound means no listing could be resolved for a license.
	ErrTargetNotFound = errors.New("pay to publish target entity not found")
	// ErrMissingFieldDefinition means the configured license target field
	// does not exist on the listing's bundle.
	ErrMissingFieldDefinition = errors.New("license target field is not defined on the target bundle")
)
