package config

// Client is the on-disk configuration for the workbook client.
type Client struct {
	ClientId string
	Portal   Portal
	Cache    Cache
}

// Portal contains the GIS portal connection settings.
type Portal struct {

	// portal base url, e.g. https://www.arcgis.com or
	// https://gis.example.com/portal
	Url string

	// access token for the sharing REST API
	Token string

	// signed-in username; resolved from the portal when empty
	Username string
}

// Cache contains configs for the opened-workbook cache.
type Cache struct {
	EnableCache   bool
	CacheCapacity int
	ContentLimit  int
	RedisConn     string
	RedisPassword string
	RedisPoolSize int
	MemcachedConn string
}
