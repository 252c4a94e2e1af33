package cloth

import (
	"math"
	"slices"

	"github.com/san-kum/softsim/internal/particle"
)

const (
	// HealingInterval is the simulated time between bad-link scans.
	HealingInterval = 0.5

	badMarginFraction = 0.3
	healDeltaFraction = 0.05
)

// BreakConstraintsWithNeighbours tears every link whose first endpoint is i
// and marks i as having a broken vertical link. The cell below and to the
// right of i is no longer drawn. Out-of-range indices are ignored.
func (c *Cloth) BreakConstraintsWithNeighbours(i int) {
	if !c.Valid(i) {
		return
	}
	if _, seen := c.broken[i]; !seen {
		c.broken[i] = struct{}{}
		c.brokenOrder = append(c.brokenOrder, i)
	}

	fromI := func(dc particle.DistanceConstraint) bool { return dc.A == i }
	c.vertical = slices.DeleteFunc(c.vertical, fromI)
	c.horizontal = slices.DeleteFunc(c.horizontal, fromI)
}

// BrokenLinks returns the particle indices with a broken vertical link, in
// the order they were first broken.
func (c *Cloth) BrokenLinks() []int {
	return slices.Clone(c.brokenOrder)
}

func (c *Cloth) HasBrokenVerticalLink(i int) bool {
	_, ok := c.broken[i]
	return ok
}

// BadConstraints returns the vertical links flagged by the last healing scan.
func (c *Cloth) BadConstraints() []particle.DistanceConstraint { return c.bad }

// isCollapsed reports whether b has ridden up to within the margin of a.
func (c *Cloth) isCollapsed(a, b int) bool {
	ps := c.Particles()
	return ps[a].Pos.Y-ps[b].Pos.Y < c.cfg.Link.Y*badMarginFraction
}

// IdentifyBadConstraints runs the periodic rest-length healing pass. Vertical
// links whose lower particle has climbed too close to the upper one are
// shortened; links that have drifted away from their original length are
// walked back toward it.
func (c *Cloth) IdentifyBadConstraints(dt float64) {
	c.healingTimer += dt
	if c.healingTimer <= HealingInterval {
		return
	}
	c.healingTimer = 0

	delta := c.cfg.Link.Y * healDeltaFraction
	c.bad = c.bad[:0]
	for i := range c.vertical {
		dc := &c.vertical[i]
		switch {
		case c.isCollapsed(dc.A, dc.B):
			c.bad = append(c.bad, *dc)
			dc.RestLength = math.Max(dc.RestLength-delta, delta)
		case dc.RestLength > dc.OriginalRestLength+delta:
			dc.RestLength -= delta
		case dc.RestLength < dc.OriginalRestLength-delta:
			dc.RestLength += delta
		}
	}
}
