// Package sharing implements shareable catalog links: a random slug maps to
// a product id set with an expiry, so a viewer re-derives live product data
// instead of a frozen document.
package sharing

import (
	"crypto/rand"
	"fmt"
)

// slugAlphabet is url-safe and 64 characters long, so random bytes map
// uniformly onto it.
const slugAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// SlugLength is the number of characters in a share slug. 16 characters over
// a 64-symbol alphabet gives 96 bits of entropy; collisions are negligible
// but creation still retries once on a unique violation.
const SlugLength = 16

// NewSlug generates a random url-safe slug.
func NewSlug() (string, error) {
	buf := make([]byte, SlugLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate slug: %w", err)
	}
	for i, b := range buf {
		buf[i] = slugAlphabet[int(b)%len(slugAlphabet)]
	}
	return string(buf), nil
}
