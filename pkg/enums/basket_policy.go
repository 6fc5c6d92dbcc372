package enums

import (
	"fmt"
	"strings"
)

// BasketPolicy decides what happens to basket rows once they are ordered.
type BasketPolicy string

const (
	BasketPolicyClear  BasketPolicy = "clear"
	BasketPolicyRetain BasketPolicy = "retain"
)

// ParseBasketPolicy converts raw input into a BasketPolicy. Empty input means clear.
func ParseBasketPolicy(value string) (BasketPolicy, error) {
	switch BasketPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", BasketPolicyClear:
		return BasketPolicyClear, nil
	case BasketPolicyRetain:
		return BasketPolicyRetain, nil
	}
	return "", fmt.Errorf("invalid basket policy %q", value)
}
