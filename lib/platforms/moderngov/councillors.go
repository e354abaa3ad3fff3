package moderngov

import (
	"context"

	"moderngov/lib/platforms/moderngov/xmltree"
)

type Councillors struct {
	client *Client
}

// List flattens the councillors of every ward, ward by ward.
func (c Councillors) List(ctx context.Context) ([]xmltree.Node, error) {
	wards, err := c.client.CouncillorsByWard(ctx)
	if err != nil {
		return nil, err
	}

	var out []xmltree.Node
	for _, ward := range wards {
		councillors, err := projectFrom(GetCouncillorsByWard, ward, wardPath, "councillors", "councillor")
		if err != nil {
			return nil, err
		}
		out = append(out, councillors...)
	}
	return out, nil
}

func (c Councillors) ByWard(ctx context.Context) ([]xmltree.Node, error) {
	return c.client.CouncillorsByWard(ctx)
}
