package moderngov

import (
	"context"
	"strconv"

	"moderngov/lib/platforms/moderngov/xmltree"
)

type Committees struct {
	client *Client
}

func (c Committees) List(ctx context.Context) ([]xmltree.Node, error) {
	return c.client.CommitteesList(ctx)
}

// ByID returns the first committee with the given id, an empty mapping when
// there is none.
func (c Committees) ByID(ctx context.Context, id int64) (xmltree.Node, error) {
	committees, err := c.client.CommitteesList(ctx)
	if err != nil {
		return xmltree.Node{}, err
	}
	return firstWithId(committees, "committeeid", id), nil
}

// ByMember returns the committees a member sits on, as the service returns
// them.
func (c Committees) ByMember(ctx context.Context, memberId int64) (xmltree.Node, error) {
	return c.client.CommitteesByUser(ctx, strconv.FormatInt(memberId, 10))
}
