package client

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"insights-client/api"
	apiclient "insights-client/api/client"
	apitypes "insights-client/api/types"
	"insights-client/cache"
	"insights-client/config"
	"insights-client/types"

	logging "github.com/ipfs/go-log/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"
)

var log = logging.Logger("insights-client")

const workbookCacheName = "workbooks"

type InsightsClient struct {
	Cfg       *config.Client
	portalApi api.PortalApi
	cacheSvc  cache.CacheSvcApi
	repo      string
	closer    func()
}

// NewInsightsClient sets up a client from the repo directory's
// config.toml, creating the file with defaults on first use. Passing
// "none" as portalAddr skips the portal connection, which is enough
// for config-only commands.
func NewInsightsClient(ctx context.Context, repo string, portalAddr string, token string) (*InsightsClient, error) {
	cliPath, err := homedir.Expand(repo)
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(cliPath, "config.toml")
	_, err = os.Stat(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			err = os.MkdirAll(cliPath, 0755) //nolint: gosec
			if err != nil && !os.IsExist(err) {
				return nil, err
			}

			dc, err := config.ConfigBytes(config.DefaultClient())
			if err != nil {
				return nil, err
			}
			if err = os.WriteFile(configPath, dc, 0600); err != nil {
				return nil, err
			}
		}
	}

	c, err := config.FromFile(configPath, config.DefaultClient())
	if err != nil {
		return nil, err
	}
	cfg, ok := c.(*config.Client)
	if !ok {
		return nil, xerrors.Errorf("invalid config: %v", c)
	}

	if portalAddr == "none" {
		return &InsightsClient{
			Cfg:  cfg,
			repo: repo,
		}, nil
	} else if portalAddr != "" {
		cfg.Portal.Url = portalAddr
	}
	if token != "" {
		cfg.Portal.Token = token
	}

	if cfg.Portal.Url == "" {
		return nil, xerrors.Errorf("invalid portal url")
	}
	if len(cfg.Portal.Token) == 0 {
		return nil, xerrors.New("invalid token")
	}

	portalApi, closer, err := apiclient.NewPortalApi(ctx, cfg.Portal.Url, cfg.Portal.Token)
	if err != nil {
		return nil, err
	}

	ic := &InsightsClient{
		Cfg:       cfg,
		portalApi: portalApi,
		repo:      repo,
		closer:    closer,
	}

	if cfg.Cache.EnableCache {
		ic.cacheSvc = newCacheSvc(&cfg.Cache)
		if err = ic.cacheSvc.CreateCache(workbookCacheName, cfg.Cache.CacheCapacity); err != nil {
			log.Warnf("create workbook cache: %v", err)
		}
	}

	return ic, nil
}

func newCacheSvc(cfg *config.Cache) cache.CacheSvcApi {
	if cfg.RedisConn != "" {
		return cache.NewRedisCacheSvc(cfg.RedisConn, cfg.RedisPassword, cfg.RedisPoolSize)
	}
	if cfg.MemcachedConn != "" {
		return cache.NewMemcachedCacheSvc(cfg.MemcachedConn)
	}
	return cache.NewLruCacheSvc()
}

func (ic *InsightsClient) Close() {
	if ic.closer != nil {
		ic.closer()
	}
}

func (ic *InsightsClient) SaveConfig(cfg *config.Client) error {
	cliPath, err := homedir.Expand(ic.repo)
	if err != nil {
		return err
	}

	configPath := filepath.Join(cliPath, "config.toml")
	dc, err := config.ConfigBytes(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, dc, 0600)
}

// Online reports whether the portal is ArcGIS Online rather than an
// on-premises Portal deployment.
func (ic *InsightsClient) Online() bool {
	return strings.Contains(strings.ToLower(ic.Cfg.Portal.Url), "arcgis.com")
}

func (ic *InsightsClient) Self(ctx context.Context) (apitypes.SelfResp, error) {
	return ic.portalApi.Self(ctx)
}

// WorkspaceUrl builds the hosted workspace service URL for a workbook.
// The layout differs between ArcGIS Online and Portal.
func (ic *InsightsClient) WorkspaceUrl(ctx context.Context, workbookId string) (string, error) {
	if ic.Online() {
		self, err := ic.portalApi.Self(ctx)
		if err != nil {
			return "", err
		}
		return "https://insightsservices.arcgis.com/" + self.OrgId + "/arcgis/rest/services/" + workbookId + "/WorkspaceServer", nil
	}
	base := strings.TrimRight(strings.ToLower(ic.Cfg.Portal.Url), "/")
	return base + "/arcgis/rest/services/Hosted/" + workbookId + "/WorkspaceServer", nil
}

// cachedWorkbook is the serialized form workbooks take in the cache.
// All three backends can store a string, so the document round-trips
// through remote backends the same way it does through the LRU.
type cachedWorkbook struct {
	Title        string               `json:"title"`
	WorkbookId   string               `json:"workbookId"`
	WorkspaceId  string               `json:"workspaceId"`
	WorkspaceUrl string               `json:"workspaceUrl"`
	Props        *types.WorkbookProps `json:"props"`
}

func (ic *InsightsClient) loadCachedWorkbook(itemId string) *Workbook {
	if ic.cacheSvc == nil {
		return nil
	}

	value, err := ic.cacheSvc.Get(workbookCacheName, itemId)
	if err != nil || value == nil {
		return nil
	}
	text, ok := value.(string)
	if !ok {
		return nil
	}

	var snap cachedWorkbook
	if err = jsoniter.UnmarshalFromString(text, &snap); err != nil || snap.Props == nil {
		log.Warnf("drop undecodable cache entry for %s", itemId)
		ic.cacheSvc.Evict(workbookCacheName, itemId)
		return nil
	}
	return &Workbook{
		ic:           ic,
		Title:        snap.Title,
		WorkbookId:   snap.WorkbookId,
		WorkspaceId:  snap.WorkspaceId,
		WorkspaceUrl: snap.WorkspaceUrl,
		Props:        snap.Props,
	}
}

func (ic *InsightsClient) cacheWorkbook(wb *Workbook, size int) {
	if ic.cacheSvc == nil {
		return
	}

	if ic.Cfg.Cache.ContentLimit > 0 && size > ic.Cfg.Cache.ContentLimit {
		ic.cacheSvc.Evict(workbookCacheName, wb.WorkspaceId)
		return
	}

	text, err := jsoniter.MarshalToString(&cachedWorkbook{
		Title:        wb.Title,
		WorkbookId:   wb.WorkbookId,
		WorkspaceId:  wb.WorkspaceId,
		WorkspaceUrl: wb.WorkspaceUrl,
		Props:        wb.Props,
	})
	if err != nil {
		log.Warnf("cache workbook %s: %v", wb.WorkspaceId, err)
		return
	}
	ic.cacheSvc.Put(workbookCacheName, wb.WorkspaceId, text)
}
