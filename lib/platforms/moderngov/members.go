package moderngov

import (
	"context"

	"moderngov/lib/platforms/moderngov/xmltree"
)

type Members struct {
	client *Client
}

func (m Members) List(ctx context.Context) ([]xmltree.Node, error) {
	return m.client.MemberGroup(ctx)
}

// ByID returns the first member with the given id, an empty mapping when
// there is none.
func (m Members) ByID(ctx context.Context, id int64) (xmltree.Node, error) {
	members, err := m.client.MemberGroup(ctx)
	if err != nil {
		return xmltree.Node{}, err
	}
	return firstWithId(members, "memberid", id), nil
}

// firstWithId skips records whose id is not a number.
func firstWithId(records []xmltree.Node, field string, id int64) xmltree.Node {
	for _, record := range records {
		value, err := record.Int(field)
		if err != nil {
			continue
		}
		if value == id {
			return record
		}
	}
	return xmltree.NewMapping()
}
