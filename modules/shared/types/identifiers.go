// Package types provides shared value objects and type definitions
// used across multiple modules (Shared Kernel pattern).
package types

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// UserID identifies an account. Values are issued by the hosted identity
// service, so they are parsed rather than generated here.
type UserID struct {
	value string
}

func ParseUserID(s string) (UserID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return UserID{}, ErrInvalidID
	}
	return UserID{value: strings.ToLower(s)}, nil
}

func (id UserID) String() string { return id.value }
func (id UserID) IsZero() bool   { return id.value == "" }

// OrderID identifies a placed order, e.g. "AGL-3F9A0C12B7DE".
type OrderID struct {
	value string
}

const orderIDPrefix = "AGL-"

var orderIDRegex = regexp.MustCompile(`^AGL-[0-9A-F]{12}$`)

func NewOrderID() OrderID {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return OrderID{value: orderIDPrefix + strings.ToUpper(raw[:12])}
}

func ParseOrderID(s string) (OrderID, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !orderIDRegex.MatchString(s) {
		return OrderID{}, ErrInvalidID
	}
	return OrderID{value: s}, nil
}

func (id OrderID) String() string { return id.value }
func (id OrderID) IsZero() bool   { return id.value == "" }

// ProductID identifies a catalog product.
type ProductID struct {
	value string
}

func NewProductID() ProductID {
	return ProductID{value: uuid.New().String()}
}

func ParseProductID(s string) (ProductID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return ProductID{}, ErrInvalidID
	}
	return ProductID{value: strings.ToLower(s)}, nil
}

func (id ProductID) String() string { return id.value }
func (id ProductID) IsZero() bool   { return id.value == "" }
