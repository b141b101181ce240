package agenda

// Intersects reports whether two Periods share at least one minute. Touching
// endpoints do not count.
func Intersects(a, b *Period) bool {
	return a.start < b.end && b.start < a.end
}

// CheckIntersection marks p, and then every other Period in siblings,
// against the whole set. Each Period is checked once, so a call costs
// O(n²); fine for one day's worth of Periods.
func (p *Period) CheckIntersection(siblings []*Period) {
	p.markIntersections(siblings)
	for _, s := range siblings {
		if s != p {
			s.markIntersections(siblings)
		}
	}
}

func (p *Period) markIntersections(siblings []*Period) {
	hit := false
	for _, s := range siblings {
		if s == p {
			continue
		}
		if Intersects(p, s) {
			hit = true
			break
		}
	}
	p.setIntersecting(hit)
}

// Conflicts lists the Periods in siblings that overlap p.
func Conflicts(p *Period, siblings []*Period) []*Period {
	var out []*Period
	for _, s := range siblings {
		if s != p && Intersects(p, s) {
			out = append(out, s)
		}
	}
	return out
}
