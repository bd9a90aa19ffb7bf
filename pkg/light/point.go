package light

// StepPoint moves a play position by step inside a table of length
// entries. Moving forward wraps modulo length. Moving backward works on
// the 8-bit counter: an underflowed position p is mapped to
// length - (255 - p) - 1.
func StepPoint(point uint8, forward bool, step, length uint8) uint8 {
	if forward {
		point += step
		if point >= length {
			point -= length
		}
		return point
	}
	point -= step
	if point >= length {
		point = length - (255 - point) - 1
	}
	return point
}
