package catalog

import "errors"

var (
	ErrLocationIDRequired          = errors.New("catalog: location id is required")
	ErrProductExternalIDRequired   = errors.New("catalog: product external id is required")
	ErrProductNameRequired         = errors.New("catalog: product name is required")
	ErrVariationProductRequired    = errors.New("catalog: variation must belong to a product")
	ErrVariationExternalIDRequired = errors.New("catalog: variation external id is required")
)
