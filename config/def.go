package config

import (
	"bytes"

	"insights-client/types"
	"insights-client/utils"

	"github.com/BurntSushi/toml"
)

func DefaultClient() *Client {
	return &Client{
		ClientId: utils.GenerateClientId(),
		Portal: Portal{
			Url: "https://www.arcgis.com",
		},
		Cache: Cache{
			EnableCache:   true,
			CacheCapacity: 32,
			ContentLimit:  2097152,
		},
	}
}

func ConfigBytes(cfg interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	e := toml.NewEncoder(buf)
	if err := e.Encode(cfg); err != nil {
		return nil, types.Wrap(types.ErrEncodeConfigFailed, err)
	}

	return buf.Bytes(), nil
}
