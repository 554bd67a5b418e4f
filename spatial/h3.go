// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"fmt"

	"github.com/uber/h3-go/v4"
)

// CellResolutions are the H3 resolutions stored next to every resolved
// location. 4 groups by region, 6 by city and 8 by neighbourhood.
var CellResolutions = []int{4, 6, 8}

// Cells returns the H3 cell of p at each of CellResolutions, in order.
func Cells(p Point) ([]int64, error) {
	latLng := h3.NewLatLng(p.Lat, p.Lng)
	cells := make([]int64, 0, len(CellResolutions))

	for _, res := range CellResolutions {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return nil, fmt.Errorf("failed to compute H3 cell at resolution %d: %w", res, err)
		}

		cells = append(cells, int64(cell))
	}

	return cells, nil
}
