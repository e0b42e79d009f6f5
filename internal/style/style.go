// Package style assigns tone tags to a message batch. The rotation is
// fixed and deterministic so every batch spans as many tonal registers
// as its size allows.
package style

import "github.com/tanachan3/looqn-all/internal/model"

// Plan returns one style tag per message, cycling through the palette
// in order.
func Plan(count int) []model.StyleTag {
	if count <= 0 {
		return nil
	}
	tags := make([]model.StyleTag, count)
	for i := range tags {
		tags[i] = model.StylePalette[i%len(model.StylePalette)]
	}
	return tags
}
