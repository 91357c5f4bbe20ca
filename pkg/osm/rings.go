package osm

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// assembleRings joins way segments end to end into closed rings. Segments
// that cannot be closed are dropped.
func assembleRings(segments []orb.LineString) []orb.Ring {
	pending := make([]orb.LineString, 0, len(segments))
	for _, s := range segments {
		if len(s) >= 2 {
			pending = append(pending, s)
		}
	}

	var rings []orb.Ring
	for len(pending) > 0 {
		cur := append(orb.LineString(nil), pending[0]...)
		pending = pending[1:]

		for cur[0] != cur[len(cur)-1] {
			next := -1
			for i, s := range pending {
				switch cur[len(cur)-1] {
				case s[0]:
					cur = append(cur, s[1:]...)
					next = i
				case s[len(s)-1]:
					cur = append(cur, reversed(s)[1:]...)
					next = i
				}
				if next >= 0 {
					break
				}
			}
			if next < 0 {
				break
			}
			pending = append(pending[:next], pending[next+1:]...)
		}

		if len(cur) >= 4 && cur[0] == cur[len(cur)-1] {
			rings = append(rings, orb.Ring(cur))
		}
	}
	return rings
}

func reversed(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[len(ls)-1-i] = p
	}
	return out
}

// buildMultiPolygon makes one polygon per outer ring and attaches each inner
// ring to the first outer ring containing its first vertex.
func buildMultiPolygon(outer, inner []orb.Ring) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(outer))
	for _, r := range outer {
		mp = append(mp, orb.Polygon{r})
	}
	for _, hole := range inner {
		for i := range mp {
			if planar.RingContains(mp[i][0], hole[0]) {
				mp[i] = append(mp[i], hole)
				break
			}
		}
	}
	return mp
}
