package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChartKeyGenerator builds date-partitioned object keys for archived chart
// PNGs, e.g. charts/2026/08/26/1a2b3c4d.png.
type ChartKeyGenerator struct {
	prefix string
}

func NewChartKeyGenerator(prefix string) *ChartKeyGenerator {
	if prefix == "" {
		prefix = "charts"
	}
	return &ChartKeyGenerator{prefix: prefix}
}

func (g *ChartKeyGenerator) GenerateKey() string {
	now := time.Now()
	uid := uuid.New().String()[:8]
	return fmt.Sprintf("%s/%s/%s/%s/%s.png",
		g.prefix, now.Format("2006"), now.Format("01"), now.Format("02"), uid)
}
