package configlibsql

import (
	"errors"

	"moderngov/internal/components/chrono"
	"moderngov/lib/responsecache"
)

// Struct configures the database responses are cached in, Url takes
// precedence over File when both are set.
type Struct struct {
	// File is a local sqlite database, it is created when missing.
	File string `json:"file"`
	// Url is a remote libsql database, several machines may share it.
	Url       string `json:"url" validate:"omitempty,url"`
	AuthToken string `json:"auth_token"`
}

func (config Struct) OpenStore(clock chrono.API) (*responsecache.SQLStore, error) {
	if config.Url != "" {
		return responsecache.OpenLibsql(config.Url, config.AuthToken, clock)
	}
	if config.File == "" {
		return nil, errors.New("neither a file nor a url was specified")
	}
	return responsecache.OpenSQLite(config.File, clock)
}
