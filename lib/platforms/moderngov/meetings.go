package moderngov

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"moderngov/lib/platforms/moderngov/xmltree"
)

// DateLayout is how the service writes dates.
const DateLayout = "02/01/2006"

type Meetings struct {
	client *Client
}

// List returns every meeting grouped by committee, as the service returns
// them.
func (m Meetings) List(ctx context.Context) ([]xmltree.Node, error) {
	return m.client.MeetingsList(ctx, "0", "0", "0")
}

func (m Meetings) ByMeetingID(ctx context.Context, id int64) (xmltree.Node, error) {
	return m.client.Meeting(ctx, strconv.FormatInt(id, 10))
}

// ByCommitteeID returns the meetings of a single committee, the filtering is
// done by the service.
func (m Meetings) ByCommitteeID(ctx context.Context, committeeId int64) ([]xmltree.Node, error) {
	return m.client.MeetingsList(ctx, strconv.FormatInt(committeeId, 10), "0", "0")
}

type ScheduledMeeting struct {
	CommitteeId    string
	CommitteeTitle string
	// Date is the zero time when the meeting date could not be read.
	Date    time.Time
	Meeting xmltree.Node
}

// Schedule lists the meetings of every committee ordered by date. Meetings
// with unreadable dates come last in the order the service gave them.
func (m Meetings) Schedule(ctx context.Context) ([]ScheduledMeeting, error) {
	committees, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []ScheduledMeeting
	for _, committee := range committees {
		meetings, err := projectFrom(GetMeetings, committee, committeeMeetingsPath, "committeemeetings", "meeting")
		if err != nil {
			return nil, err
		}
		for _, meeting := range meetings {
			date, _ := ParseDate(meeting.Field("meetingdate"))
			out = append(out, ScheduledMeeting{
				CommitteeId:    committee.Field("committeeid"),
				CommitteeTitle: committee.Field("committeetitle"),
				Date:           date,
				Meeting:        meeting,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		left, right := out[i].Date, out[j].Date
		if left.IsZero() || right.IsZero() {
			return !left.IsZero() && right.IsZero()
		}
		return left.Before(right)
	})
	return out, nil
}

func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// AgendaItems returns the agenda items of a meeting record, none when the
// meeting has no agenda.
func AgendaItems(meeting xmltree.Node) []xmltree.Node {
	items, _ := meeting.Lookup("agendaitems", "agendaitem")
	return items.List()
}

func Attendees(meeting xmltree.Node) []xmltree.Node {
	attendees, _ := meeting.Lookup("attendees", "attendee")
	return attendees.List()
}
