// Package moderngov is a read-only client for the web service council sites
// publish under /mgWebService.asmx.
package moderngov

// Api groups the queries that can be made against a single site, all of them
// share one client and therefore one cache.
type Api struct {
	client *Client
}

// New resolves site and builds the client every query goes through.
func New(site string, opts ClientOptions) (*Api, error) {
	client, err := NewClient(site, opts)
	if err != nil {
		return nil, err
	}
	return &Api{client: client}, nil
}

func (a *Api) Client() *Client {
	return a.client
}

func (a *Api) Close() {
	a.client.Close()
}

func (a *Api) Wards() Wards {
	return Wards{client: a.client}
}

func (a *Api) Councillors() Councillors {
	return Councillors{client: a.client}
}

func (a *Api) Members() Members {
	return Members{client: a.client}
}

func (a *Api) Committees() Committees {
	return Committees{client: a.client}
}

func (a *Api) Meetings() Meetings {
	return Meetings{client: a.client}
}
