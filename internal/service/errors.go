package service

import "errors"

var (
	ErrInvalidCartItem       = errors.New("invalid cart item")
	ErrPricingTiersInvalid   = errors.New("bulk discount tiers invalid")
	ErrRemoteCartUnavailable = errors.New("remote cart api unavailable")
	ErrStoreUnavailable      = errors.New("cart store unavailable")
)
