package downloader

import (
	"errors"
	"sort"

	"cilicili/internal/model"
)

// ErrNoStreams is returned when there is nothing to choose from.
var ErrNoStreams = errors.New("no streams offered")

// SelectStream picks one variant from candidates according to preset.
// Candidates without a URL are ignored. Ties on quality are broken by the
// larger estimated size, then by the order given.
func SelectStream(candidates []model.StreamDescriptor, preset model.QualityPreset) (model.StreamDescriptor, error) {
	ranked := rank(candidates)
	if len(ranked) == 0 {
		return model.StreamDescriptor{}, ErrNoStreams
	}
	switch preset {
	case model.PresetLow:
		return ranked[len(ranked)-1], nil
	case model.PresetMedium:
		return ranked[len(ranked)/2], nil
	default:
		return ranked[0], nil
	}
}

// SelectQuality returns the variant whose Quality equals want, or the best
// one below it when want is not offered. When every variant is above want
// the lowest is returned.
func SelectQuality(candidates []model.StreamDescriptor, want int) (model.StreamDescriptor, error) {
	ranked := rank(candidates)
	if len(ranked) == 0 {
		return model.StreamDescriptor{}, ErrNoStreams
	}
	for _, s := range ranked {
		if s.Quality <= want {
			return s, nil
		}
	}
	return ranked[len(ranked)-1], nil
}

// rank returns the offered candidates ordered best first.
func rank(candidates []model.StreamDescriptor) []model.StreamDescriptor {
	out := make([]model.StreamDescriptor, 0, len(candidates))
	for _, c := range candidates {
		if c.Offered() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Quality == out[j].Quality {
			return out[i].Size > out[j].Size
		}
		return out[i].Quality > out[j].Quality
	})
	return out
}
