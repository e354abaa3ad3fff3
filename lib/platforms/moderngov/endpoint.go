package moderngov

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoint is one of the operations of the web service.
type Endpoint string

const (
	GetCouncillorsByWard Endpoint = "GetCouncillorsByWard"
	GetMeetings          Endpoint = "GetMeetings"
	GetMeeting           Endpoint = "GetMeeting"
	GetCommittees        Endpoint = "GetCommittees"
	GetCommitteesByUser  Endpoint = "GetCommitteesByUser"
	GetMemberGroup       Endpoint = "GetMemberGroup"
)

var endpoints = []Endpoint{
	GetCouncillorsByWard,
	GetMeetings,
	GetMeeting,
	GetCommittees,
	GetCommitteesByUser,
	GetMemberGroup,
}

func (e Endpoint) Valid() error {
	for _, known := range endpoints {
		if e == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownEndpoint, string(e))
}

type Param struct {
	Name  string
	Value string
}

// Params are the query parameters of a request, they are sent and keyed in
// the order given.
type Params []Param

func P(name, value string) Param {
	return Param{Name: name, Value: value}
}

// Encode returns the params as a query string, keeping their order.
func (p Params) Encode() string {
	var sb strings.Builder
	for i, param := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(param.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(param.Value))
	}
	return sb.String()
}
