package entropy

// Script is a Source that replays fixed values, for tests that need exact rolls.
// Floats and Ints are consumed in order and wrap around when exhausted.
// With no Ints scripted, Intn derives its value from the next float.
type Script struct {
	Floats []float64
	Ints   []int

	fi, ii int
}

func (s *Script) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[s.fi%len(s.Floats)]
	s.fi++
	return v
}

func (s *Script) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	if len(s.Ints) == 0 {
		return int(s.Float64() * float64(n))
	}
	v := s.Ints[s.ii%len(s.Ints)]
	s.ii++
	if v < 0 {
		v = -v
	}
	return v % n
}

func (s *Script) Int63() int64 {
	return int64(s.Intn(1 << 30))
}

// Draws returns how many floats have been consumed.
func (s *Script) Draws() int { return s.fi }
