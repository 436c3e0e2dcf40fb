// Package listing filters, sorts and paginates author records client side.
package listing
