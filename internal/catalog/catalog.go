// Package catalog provides read-only access to products and categories.
// The order engine prices order lines from here and never writes back.
package catalog

import "errors"

var ErrNotFound = errors.New("product not found")
