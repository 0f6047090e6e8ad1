package domain

import "errors"

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrConsistencyFault = errors.New("cart references a product missing from the catalog")
	ErrStoreFailure     = errors.New("store failure")
	ErrInvalidStatus    = errors.New("invalid order status")
)
