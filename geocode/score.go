package geocode

import "sort"

// Wire shapes of the provider's geocode JSON endpoint.
type response struct {
	Status       string   `json:"status"`
	Results      []result `json:"results"`
	ErrorMessage string   `json:"error_message"`
}

type result struct {
	PartialMatch bool     `json:"partial_match"`
	Types        []string `json:"types"`
	Geometry     struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		LocationType string `json:"location_type"`
	} `json:"geometry"`
}

// score ranks a candidate by location precision, penalizes partial
// matches, and rewards exact street addresses.
func score(r result) int {
	var s int
	switch r.Geometry.LocationType {
	case "ROOFTOP":
		s = 4
	case "RANGE_INTERPOLATED":
		s = 3
	case "GEOMETRIC_CENTER":
		s = 2
	default:
		s = 1
	}
	if r.PartialMatch {
		s -= 2
	}
	for _, t := range r.Types {
		if t == "street_address" {
			s++
			break
		}
	}
	return s
}

// bestResult picks the highest-scoring candidate; ties keep the
// provider's original ordering.
func bestResult(results []result) result {
	ranked := append([]result(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool { return score(ranked[i]) > score(ranked[j]) })
	return ranked[0]
}
