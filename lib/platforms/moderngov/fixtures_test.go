package moderngov

import (
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"
	"time"

	"moderngov/internal/components/chrono"
	"moderngov/internal/components/telemetry"
	"moderngov/lib/responsecache"
)

const councillorsByWardXml = `<?xml version="1.0" encoding="utf-8"?>
<councillorsbyward xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
	<wards>
		<ward>
			<wardtitle>Abbey</wardtitle>
			<councillors>
				<councillor>
					<councillorid>1</councillorid>
					<fullusername>Councillor Ada Ashdown</fullusername>
				</councillor>
				<councillor>
					<councillorid>2</councillorid>
					<fullusername>Councillor Ben Bray</fullusername>
				</councillor>
			</councillors>
		</ward>
		<ward>
			<wardtitle>Castle</wardtitle>
			<councillors>
				<councillor>
					<councillorid>3</councillorid>
					<fullusername>Councillor Cat Cole</fullusername>
				</councillor>
			</councillors>
		</ward>
	</wards>
</councillorsbyward>`

const memberGroupXml = `<?xml version="1.0" encoding="utf-8"?>
<memberlist>
	<members>
		<member><memberid>x12</memberid><fullusername>Not A Number</fullusername></member>
		<member><memberid>7</memberid><fullusername>First Seven</fullusername></member>
		<member><memberid>8</memberid><fullusername>Eight</fullusername></member>
		<member><memberid>7</memberid><fullusername>Second Seven</fullusername></member>
	</members>
</memberlist>`

const committeesXml = `<?xml version="1.0" encoding="utf-8"?>
<committees>
	<committee><committeeid>10</committeeid><committeetitle>Planning</committeetitle></committee>
	<committee><committeeid>11</committeeid><committeetitle>Cabinet</committeetitle></committee>
</committees>`

const committeesByUserXml = `<?xml version="1.0" encoding="utf-8"?>
<committeesbyuser>
	<committees>
		<committee><committeeid>11</committeeid><committeetitle>Cabinet</committeetitle></committee>
	</committees>
</committeesbyuser>`

const meetingsXml = `<?xml version="1.0" encoding="utf-8"?>
<getmeetings>
	<committee>
		<committeeid>10</committeeid>
		<committeetitle>Planning</committeetitle>
		<committeemeetings>
			<meeting><meetingid>2</meetingid><meetingdate>05/03/2024</meetingdate></meeting>
			<meeting><meetingid>1</meetingid><meetingdate>01/02/2024</meetingdate></meeting>
		</committeemeetings>
	</committee>
	<committee>
		<committeeid>11</committeeid>
		<committeetitle>Cabinet</committeetitle>
		<committeemeetings>
			<meeting><meetingid>4</meetingid><meetingdate>TBC</meetingdate></meeting>
			<meeting><meetingid>3</meetingid><meetingdate>20/02/2024</meetingdate></meeting>
		</committeemeetings>
	</committee>
</getmeetings>`

const committeeMeetingsXml = `<?xml version="1.0" encoding="utf-8"?>
<getmeetings>
	<committee>
		<committeeid>11</committeeid>
		<committeetitle>Cabinet</committeetitle>
		<committeemeetings>
			<meeting><meetingid>3</meetingid><meetingdate>20/02/2024</meetingdate></meeting>
		</committeemeetings>
	</committee>
</getmeetings>`

const meetingWithoutAgendaXml = `<?xml version="1.0" encoding="utf-8"?>
<meeting>
	<meetingid>42</meetingid>
	<meetingdate>01/02/2024</meetingdate>
	<meetingtime>18:30</meetingtime>
	<meetingstatus>Confirmed</meetingstatus>
	<attendees>
		<attendee memberid="7" name="First Seven" attendance="Present"/>
	</attendees>
</meeting>`

const meetingWithAgendaXml = `<?xml version="1.0" encoding="utf-8"?>
<meeting>
	<meetingid>43</meetingid>
	<agendaitems>
		<agendaitem><agendaitemid>100</agendaitemid><agendaitemtitle>Apologies</agendaitemtitle></agendaitem>
	</agendaitems>
	<attendees>
		<attendee memberid="7" name="First Seven" attendance="Present"/>
		<attendee memberid="8" name="Eight" attendance="Apologies"/>
	</attendees>
</meeting>`

const emptyMeetingXml = `<?xml version="1.0" encoding="utf-8"?>
<meeting/>`

var siteResponses = map[string]string{
	"GetCouncillorsByWard":                              councillorsByWardXml,
	"GetMemberGroup":                                    memberGroupXml,
	"GetCommittees":                                     committeesXml,
	"GetCommitteesByUser":                               committeesByUserXml,
	"GetMeetings":                                       meetingsXml,
	"GetMeetings?lCommitteeId=11&sFromDate=0&sToDate=0": committeeMeetingsXml,
	"GetMeeting?lMeetingId=42":                          meetingWithoutAgendaXml,
	"GetMeeting?lMeetingId=43":                          meetingWithAgendaXml,
	"GetMeeting?lMeetingId=44":                          emptyMeetingXml,
}

// fakeSite serves fixed responses under /mgWebService.asmx and counts the
// requests it gets.
type fakeSite struct {
	server *httptest.Server
	status int

	mutex   sync.Mutex
	hits    int
	queries []string
}

func newFakeSite(t *testing.T, responses map[string]string) *fakeSite {
	t.Helper()
	site := &fakeSite{status: http.StatusOK}
	site.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mutex.Lock()
		site.hits++
		site.queries = append(site.queries, r.URL.RawQuery)
		status := site.status
		site.mutex.Unlock()

		if path.Dir(r.URL.Path) != "/mgWebService.asmx" {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		endpoint := path.Base(r.URL.Path)
		body, ok := responses[endpoint+"?"+r.URL.RawQuery]
		if !ok {
			body, ok = responses[endpoint]
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("content-type", "text/xml; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(site.server.Close)
	return site
}

func (s *fakeSite) Hits() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.hits
}

func (s *fakeSite) Queries() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]string, len(s.queries))
	copy(out, s.queries)
	return out
}

func (s *fakeSite) SetStatus(status int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.status = status
}

var testStart = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, clock chrono.API) responsecache.Store {
	t.Helper()
	store, err := responsecache.OpenSQLite(":memory:", clock)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestClient(t *testing.T, site string, store responsecache.Store, tel telemetry.API) *Client {
	t.Helper()
	client, err := NewClient(site, ClientOptions{
		Store:     store,
		Telemetry: tel,
		Timeout:   time.Second * 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(client.Close)
	return client
}

func newTestApi(t *testing.T) (*Api, *fakeSite) {
	t.Helper()
	return newTestApiWith(t, siteResponses)
}

func newTestApiWith(t *testing.T, responses map[string]string) (*Api, *fakeSite) {
	t.Helper()
	site := newFakeSite(t, responses)
	store := newTestStore(t, chrono.NewManualImpl(testStart))
	api, err := New(site.server.URL, ClientOptions{
		Store:     store,
		Telemetry: telemetry.NewRecorder(),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(api.Close)
	return api, site
}
