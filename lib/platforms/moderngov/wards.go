package moderngov

import (
	"context"
	"strings"

	"moderngov/lib/platforms/moderngov/xmltree"

	"github.com/antzucaro/matchr"
)

// minWardSimilarity is the lowest Jaro-Winkler similarity Find accepts.
const minWardSimilarity = 0.85

type Wards struct {
	client *Client
}

// List returns the title of every ward in the order the service gives them.
func (w Wards) List(ctx context.Context) ([]string, error) {
	wards, err := w.client.CouncillorsByWard(ctx)
	if err != nil {
		return nil, err
	}
	return wardTitles(wards)
}

func wardTitles(wards []xmltree.Node) ([]string, error) {
	titles := make([]string, len(wards))
	for i, ward := range wards {
		title, err := requiredField(GetCouncillorsByWard, ward, wardPath, "wardtitle")
		if err != nil {
			return nil, err
		}
		titles[i] = title
	}
	return titles, nil
}

// Find returns the ward whose title best matches title. Case-insensitive
// exact matches win, otherwise the closest title above a similarity
// threshold is used.
func (w Wards) Find(ctx context.Context, title string) (xmltree.Node, bool, error) {
	wards, err := w.client.CouncillorsByWard(ctx)
	if err != nil {
		return xmltree.Node{}, false, err
	}

	titles, err := wardTitles(wards)
	if err != nil {
		return xmltree.Node{}, false, err
	}

	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return xmltree.NewMapping(), false, nil
	}

	best := -1
	bestScore := 0.0
	for i, ward := range wards {
		candidate := strings.ToLower(strings.TrimSpace(titles[i]))
		if candidate == needle {
			return ward, true, nil
		}
		score := matchr.JaroWinkler(needle, candidate, false)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 || bestScore < minWardSimilarity {
		return xmltree.NewMapping(), false, nil
	}
	return wards[best], true, nil
}
