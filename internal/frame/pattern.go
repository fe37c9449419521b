package frame

// Pattern is a deterministic animated gradient used by the demo and
// snapshot commands. Tick t shifts the gradient one step, so successive
// frames animate while any single frame stays reproducible.
type Pattern struct {
	cfg Config
}

// NewPattern returns a pattern generator for the given geometry.
func NewPattern(cfg Config) *Pattern {
	return &Pattern{cfg: cfg}
}

// Fill writes tick t of the pattern into dst. dst must be sized for the
// pattern's geometry.
func (p *Pattern) Fill(dst *Buffer, t uint64) {
	w := int(p.cfg.Width)
	h := int(p.cfg.Height)
	pix := dst.Pix()

	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[i+0] = uint8(uint64(x) + t)
			pix[i+1] = uint8(uint64(y) + t)
			pix[i+2] = uint8(t)
			pix[i+3] = 0xff
			i += BytesPerPixel
		}
	}
}
