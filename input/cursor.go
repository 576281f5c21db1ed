// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package input

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/gogpu/compose/internal/csscolor"
)

// Cursor renders the round brush cursor: a 2*size square image holding a
// circle of radius size/2 at its centre. The hot spot is (size, size).
func Cursor(size float64, color string) (image.Image, error) {
	if size <= 0 || math.IsNaN(size) {
		return nil, fmt.Errorf("input: invalid cursor size %v", size)
	}
	c, err := csscolor.Parse(color)
	if err != nil {
		return nil, fmt.Errorf("input: cursor color: %w", err)
	}

	side := int(math.Ceil(size * 2))
	dc := gg.NewContext(side, side)
	defer dc.Close()

	dc.SetColor(c.Color())
	dc.DrawCircle(size, size, size/2)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("input: draw cursor: %w", err)
	}
	return dc.Image(), nil
}
