package cloth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/softsim/internal/cloth"
	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

const step = 0.01

var _ = Describe("a hanging 2x2 cloth", func() {
	var (
		c     *cloth.Cloth
		start []r2.Vec
	)

	BeforeEach(func() {
		cfg := cloth.DefaultConfig()
		cfg.Columns, cfg.Rows = 2, 2
		cfg.Link = geom.Vec(1, 1)
		cfg.MassSplit = cloth.Uniform
		cfg.Gravity = -100
		cfg.PinLastColumn = false

		var err error
		c, err = cloth.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		start = c.Points()
	})

	It("pins only the top-left particle", func() {
		pinned := 0
		for _, p := range c.Particles() {
			if p.Pinned {
				pinned++
			}
		}
		Expect(pinned).To(Equal(1))
		Expect(c.Particles()[c.Index(0, 0)].Pinned).To(BeTrue())
	})

	Context("after 100 fixed steps", func() {
		BeforeEach(func() {
			for i := 0; i < 100; i++ {
				c.Update(step)
			}
		})

		It("keeps the pinned particle where it started", func() {
			Expect(c.Particles()[c.Index(0, 0)].Pos).To(Equal(start[c.Index(0, 0)]))
		})

		It("lets the bottom-right particle sag less than free fall", func() {
			free := particle.NewSolver([]particle.Particle{particle.At(r2.Vec{})}, -100)
			for i := 0; i < 100; i++ {
				free.Integrate(step)
			}
			freeFall := -free.Particles()[0].Pos.Y

			br := c.Index(1, 1)
			drop := start[br].Y - c.Particles()[br].Pos.Y
			Expect(drop).To(BeNumerically(">", 0))
			Expect(drop).To(BeNumerically("<", freeFall))
		})

		It("stays finite", func() {
			Expect(c.CheckFinite()).To(Succeed())
		})
	})
})

var _ = Describe("interaction on the default cloth", func() {
	var c *cloth.Cloth

	BeforeEach(func() {
		var err error
		c, err = cloth.New(cloth.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
	})

	It("never moves pinned particles while colliding and stepping", func() {
		var pinned []int
		for i, p := range c.Particles() {
			if p.Pinned {
				pinned = append(pinned, i)
			}
		}
		before := c.Points()

		disc := geom.Disc{Center: geom.Vec(100, 40), Radius: 7}
		box := geom.NewBox(geom.Vec(90, 20), 15, 10)
		for i := 0; i < 200; i++ {
			c.Update(step)
			c.CollideWithCircle(disc)
			c.CollideWithBox(box)
		}

		for _, i := range pinned {
			Expect(c.Particles()[i].Pos).To(Equal(before[i]), "particle %d", i)
		}
	})

	It("picks up a particle and drags only that one", func() {
		target := c.Particles()[c.Index(5, 5)].Pos
		grabbed := c.MovePoint(r2.Add(target, geom.Vec(0.5, 0)), particle.NoParticle)
		Expect(grabbed).To(Equal(c.Index(5, 5)))

		neighbour := c.Particles()[c.Index(6, 5)].Pos
		again := c.MovePoint(neighbour, grabbed)
		Expect(again).To(Equal(grabbed))
		Expect(c.Particles()[grabbed].Pos).To(Equal(neighbour))
		Expect(c.Particles()[c.Index(6, 5)].Pos).To(Equal(neighbour))
	})

	It("records a torn particle once however often it is torn", func() {
		p := c.Index(3, 4)
		c.BreakConstraintsWithNeighbours(p)
		c.BreakConstraintsWithNeighbours(p)

		Expect(c.BrokenLinks()).To(ConsistOf(p))
		for _, dc := range c.DistanceConstraints() {
			Expect(dc.A).NotTo(Equal(p))
		}
	})

	It("toggles a pin on demand", func() {
		i := c.Index(4, 4)
		Expect(c.TogglePin(i)).To(BeTrue())
		pos := c.Particles()[i].Pos
		for n := 0; n < 50; n++ {
			c.Update(step)
		}
		Expect(c.Particles()[i].Pos).To(Equal(pos))
	})
})
