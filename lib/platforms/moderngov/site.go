package moderngov

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"moderngov/lib/configutil"
)

const servicePath = "/mgWebService.asmx"

// ResolveSite turns a council site as a user would type it ("example.gov.uk",
// "http://example.gov.uk/") into the base url of its web service.
func ResolveSite(raw string) (*url.URL, error) {
	site := strings.TrimSpace(raw)
	if site == "" {
		return nil, &ConfigError{Site: raw, Err: errors.New("site is empty")}
	}

	lower := strings.ToLower(site)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if scheme, _, found := strings.Cut(site, "://"); found {
			return nil, &ConfigError{Site: raw, Err: fmt.Errorf("unsupported scheme %q", scheme)}
		}
		site = "https://" + site
	}
	if strings.ContainsAny(site, "?#") {
		return nil, &ConfigError{Site: raw, Err: errors.New("site must not carry a query or fragment")}
	}

	parsed, err := url.Parse(site)
	if err != nil {
		return nil, &ConfigError{Site: raw, Err: err}
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" || parsed.User != nil {
		return nil, &ConfigError{Site: raw, Err: errors.New("site must only name a host and path")}
	}
	host := parsed.Hostname()
	if host == "" {
		return nil, &ConfigError{Site: raw, Err: errors.New("site has no host")}
	}
	err = configutil.Validator().Var(host, "hostname_rfc1123|ip")
	if err != nil {
		return nil, &ConfigError{Site: raw, Err: fmt.Errorf("invalid host %q: %w", host, err)}
	}

	full := strings.TrimRight(site, "/") + servicePath
	err = configutil.Validator().Var(full, "required,url")
	if err != nil {
		return nil, &ConfigError{Site: raw, Err: err}
	}
	resolved, err := url.Parse(full)
	if err != nil {
		return nil, &ConfigError{Site: raw, Err: err}
	}
	return resolved, nil
}
