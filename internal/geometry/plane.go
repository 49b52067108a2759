package geometry

// Plane returns a flat square grid of the given size on the XZ plane, centered
// on the origin with normals facing +Y. Each cell is two triangles.
func Plane(size float32, divisions int) *Geometry {
	divisions = max(divisions, 1)
	step := size / float32(divisions)
	half := size / 2
	g := &Geometry{
		Positions: make([]float32, 0, divisions*divisions*18),
		Normals:   make([]float32, 0, divisions*divisions*18),
	}
	for i := range divisions {
		for j := range divisions {
			x0 := -half + float32(i)*step
			z0 := -half + float32(j)*step
			x1, z1 := x0+step, z0+step
			g.Positions = append(g.Positions,
				x0, 0, z0, x0, 0, z1, x1, 0, z1,
				x0, 0, z0, x1, 0, z1, x1, 0, z0,
			)
			for range 6 {
				g.Normals = append(g.Normals, 0, 1, 0)
			}
		}
	}
	return g
}
