package client

import (
	"context"
	"fmt"
	"testing"

	apitypes "insights-client/api/types"
	"insights-client/cache"
	"insights-client/config"
	"insights-client/types"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

type fakePortal struct {
	online bool

	createdServices []string
	updatedItems    map[string]string
	updatedProps    map[string]map[string]string
	deletedItems    []string
	executedTools   [][]apitypes.ExecuteTool
	executeRefs     map[string]string

	item          apitypes.ItemResp
	itemData      []byte
	getItemCalls  int
	getDataCalls  int
}

func newFakePortal() *fakePortal {
	return &fakePortal{
		updatedItems: map[string]string{},
		updatedProps: map[string]map[string]string{},
		executeRefs:  map[string]string{},
	}
}

func (f *fakePortal) CreateWorkspaceService(ctx context.Context, name string) (apitypes.CreateServiceResp, error) {
	f.createdServices = append(f.createdServices, name)
	resp := apitypes.CreateServiceResp{Success: true, Name: name}
	if f.online {
		resp.ServiceItemId = "1111aaaa1111aaaa1111aaaa1111aaaa"
	} else {
		resp.ItemId = "2222bbbb2222bbbb2222bbbb2222bbbb"
	}
	return resp, nil
}

func (f *fakePortal) UpdateItem(ctx context.Context, itemId string, itemProps map[string]string, dataText string) (apitypes.UpdateItemResp, error) {
	f.updatedItems[itemId] = dataText
	f.updatedProps[itemId] = itemProps
	return apitypes.UpdateItemResp{Success: true, Id: itemId}, nil
}

func (f *fakePortal) GetItem(ctx context.Context, itemId string) (apitypes.ItemResp, error) {
	f.getItemCalls++
	return f.item, nil
}

func (f *fakePortal) GetItemData(ctx context.Context, itemId string) ([]byte, error) {
	f.getDataCalls++
	return f.itemData, nil
}

func (f *fakePortal) DeleteItem(ctx context.Context, itemId string) (apitypes.DeleteItemResp, error) {
	f.deletedItems = append(f.deletedItems, itemId)
	return apitypes.DeleteItemResp{Success: true, ItemId: itemId}, nil
}

func (f *fakePortal) Self(ctx context.Context) (apitypes.SelfResp, error) {
	return apitypes.SelfResp{Username: "gis_user", FullName: "Gis User", OrgId: "org42"}, nil
}

func (f *fakePortal) GetLayerInfo(ctx context.Context, layerUrl string) (apitypes.LayerInfoResp, error) {
	return apitypes.LayerInfoResp{
		Name: "counties",
		Type: "Feature Layer",
		Extent: &types.Extent{
			XMin: -120, YMin: 30, XMax: -60, YMax: 50,
			SpatialReference: &types.SpatialReference{Wkid: 4326},
		},
	}, nil
}

func (f *fakePortal) Execute(ctx context.Context, workspaceUrl string, tools []apitypes.ExecuteTool, outDatasets []string) (apitypes.ExecuteResp, error) {
	f.executedTools = append(f.executedTools, tools)
	resp := apitypes.ExecuteResp{}
	for _, out := range outDatasets {
		ref := f.executeRefs[out]
		if ref == "" {
			ref = fmt.Sprintf(`{"id":"h-%s-%d"}`, out, len(f.executedTools))
		}
		resp[out] = types.DataRef(ref)
	}
	return resp, nil
}

func testClient(portal *fakePortal) *InsightsClient {
	url := "https://gis.example.com/portal"
	if portal.online {
		url = "https://www.arcgis.com"
	}
	return &InsightsClient{
		Cfg: &config.Client{
			Portal: config.Portal{Url: url, Token: "token"},
			Cache:  config.Cache{EnableCache: false},
		},
		portalApi: portal,
	}
}

func TestNewWorkbook(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)

	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)
	require.Len(t, wb.WorkbookId, 8)
	require.Equal(t, "2222bbbb2222bbbb2222bbbb2222bbbb", wb.WorkspaceId)
	require.Equal(t, "https://gis.example.com/portal/arcgis/rest/services/Hosted/"+wb.WorkbookId+"/WorkspaceServer", wb.WorkspaceUrl)

	require.Equal(t, []string{wb.WorkbookId}, portal.createdServices)
	props := portal.updatedProps[wb.WorkspaceId]
	require.Equal(t, "Insights Workbook", props["type"])
	require.Equal(t, "Census", props["title"])
	require.NotContains(t, props, "url")

	require.Equal(t, types.WorkbookFormat, wb.Props.Format)
	require.Len(t, wb.Props.Pages, 1)
	require.Equal(t, "Page 1", wb.Props.Pages[0].Title)
	require.Empty(t, wb.Props.Workspace.Datasets)
}

func TestNewWorkbookOnline(t *testing.T) {
	portal := newFakePortal()
	portal.online = true
	ic := testClient(portal)

	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)
	require.Equal(t, "1111aaaa1111aaaa1111aaaa1111aaaa", wb.WorkspaceId)
	require.Equal(t, "https://insightsservices.arcgis.com/org42/arcgis/rest/services/"+wb.WorkbookId+"/WorkspaceServer", wb.WorkspaceUrl)
	require.Equal(t, wb.WorkspaceUrl, portal.updatedProps[wb.WorkspaceId]["url"])
}

func TestOpenWorkbook(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)

	itemId := "3333cccc3333cccc3333cccc3333cccc"
	portal.item = apitypes.ItemResp{
		Id:    itemId,
		Title: "Census",
		Name:  "0badc0de",
		Type:  types.ItemTypeWorkbook,
	}
	stored, err := jsoniter.Marshal(types.DefaultWorkbookProps("Census"))
	require.NoError(t, err)
	portal.itemData = stored

	wb, err := OpenWorkbook(context.Background(), ic, itemId)
	require.NoError(t, err)
	require.Equal(t, "Census", wb.Title)
	require.Equal(t, "0badc0de", wb.WorkbookId)
	require.Equal(t, itemId, wb.WorkspaceId)
	require.Len(t, wb.Props.Pages, 1)

	_, err = OpenWorkbook(context.Background(), ic, "not-an-item-id")
	require.ErrorIs(t, err, types.ErrOpenWorkbookFailed)
}

func TestOpenWorkbookWrongType(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	portal.item = apitypes.ItemResp{Type: "Web Map"}

	_, err := OpenWorkbook(context.Background(), ic, "3333cccc3333cccc3333cccc3333cccc")
	require.ErrorIs(t, err, types.ErrOpenWorkbookFailed)
}

func TestOpenWorkbookCached(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	ic.Cfg.Cache = config.Cache{EnableCache: true, CacheCapacity: 4, ContentLimit: 1 << 20}
	ic.cacheSvc = cache.NewLruCacheSvc()
	require.NoError(t, ic.cacheSvc.CreateCache(workbookCacheName, 4))

	itemId := "3333cccc3333cccc3333cccc3333cccc"
	portal.item = apitypes.ItemResp{Id: itemId, Title: "Census", Name: "0badc0de", Type: types.ItemTypeWorkbook}
	stored, err := jsoniter.Marshal(types.DefaultWorkbookProps("Census"))
	require.NoError(t, err)
	portal.itemData = stored

	wb, err := OpenWorkbook(context.Background(), ic, itemId)
	require.NoError(t, err)
	require.Equal(t, 1, portal.getDataCalls)

	again, err := OpenWorkbook(context.Background(), ic, itemId)
	require.NoError(t, err)
	require.Equal(t, 1, portal.getDataCalls)
	require.Equal(t, wb.Title, again.Title)
	require.Equal(t, wb.WorkbookId, again.WorkbookId)
	require.Equal(t, wb.WorkspaceUrl, again.WorkspaceUrl)
	require.Equal(t, wb.Props.Format, again.Props.Format)
}

// jsonCache stores values the way the remote backends do: marshaled on
// Put, decoded into plain JSON values on Get.
type jsonCache struct {
	entries map[string][]byte
}

func (c *jsonCache) CreateCache(name string, capacity int) error { return nil }

func (c *jsonCache) Get(name string, key string) (interface{}, error) {
	raw, ok := c.entries[name+"_"+key]
	if !ok {
		return nil, types.Wrapf(types.ErrNotFound, "key %s", key)
	}
	var res interface{}
	if err := jsoniter.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *jsonCache) Put(name string, key string, value interface{}) {
	raw, err := jsoniter.Marshal(value)
	if err != nil {
		return
	}
	c.entries[name+"_"+key] = raw
}

func (c *jsonCache) Evict(name string, key string) {
	delete(c.entries, name+"_"+key)
}

func (c *jsonCache) GetSize(name string) int { return len(c.entries) }

func (c *jsonCache) ReSize(name string, capacity int) error { return nil }

func TestOpenWorkbookCachedRemoteBackend(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	ic.Cfg.Cache = config.Cache{EnableCache: true, CacheCapacity: 4, ContentLimit: 1 << 20}
	ic.cacheSvc = &jsonCache{entries: map[string][]byte{}}

	itemId := "3333cccc3333cccc3333cccc3333cccc"
	portal.item = apitypes.ItemResp{Id: itemId, Title: "Census", Name: "0badc0de", Type: types.ItemTypeWorkbook}
	stored, err := jsoniter.Marshal(types.DefaultWorkbookProps("Census"))
	require.NoError(t, err)
	portal.itemData = stored

	wb, err := OpenWorkbook(context.Background(), ic, itemId)
	require.NoError(t, err)

	// the snapshot must survive a JSON round trip through the backend
	again, err := OpenWorkbook(context.Background(), ic, itemId)
	require.NoError(t, err)
	require.Equal(t, 1, portal.getDataCalls)
	require.Equal(t, wb.Title, again.Title)
	require.Equal(t, wb.WorkbookId, again.WorkbookId)
	require.Len(t, again.Props.Pages, 1)
}

func addTestLayer(t *testing.T, wb *Workbook) string {
	t.Helper()
	name, err := wb.AddFeatureLayer(context.Background(), types.FeatureLayer{
		ItemId: "4444dddd4444dddd4444dddd4444dddd",
		Title:  "counties",
		Url:    "https://services.example.com/rest/services/counties/FeatureServer",
	}, 0)
	require.NoError(t, err)
	return name
}

func TestAddFeatureLayer(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)

	name := addTestLayer(t, wb)
	require.Contains(t, name, "counties_")

	page := wb.Props.Pages[0]
	require.Len(t, page.Model.Items, 1)
	item := page.Model.Items[0]
	require.Equal(t, types.OpAddData, item.Operation)
	require.Equal(t, name, item.OutDataset)
	require.Equal(t, "https://services.example.com/rest/services/counties/FeatureServer/0", item.Params.Data.Url)
	require.Equal(t, []types.PageContent{{Dataset: name}}, page.Contents)

	entry := wb.Props.Workspace.Datasets[name]
	require.NotNil(t, entry)
	require.True(t, entry.Origin)
	require.Equal(t, "4444dddd4444dddd4444dddd4444dddd", entry.Owner)
	require.Equal(t, "Location", entry.Fields["shape"].Alias)
	require.NotNil(t, entry.Extent)
	require.NotEmpty(t, entry.Data)
}

func TestAddMap(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)
	name := addTestLayer(t, wb)

	require.ErrorIs(t, wb.AddMap("nonexistent"), types.ErrInvalidDataset)

	require.NoError(t, wb.AddMap(name))
	require.NoError(t, wb.AddMap(name))

	page := wb.Props.Pages[0]
	require.Len(t, page.Cards, 2)
	require.Equal(t, "Card 1", page.Cards[0].Title)
	require.Equal(t, "Card 2", page.Cards[1].Title)
	require.Equal(t, types.CardTypeMap, page.Cards[0].Type)
	require.Equal(t, name, page.Cards[0].Content.Layers[0].DatasetId)

	require.Equal(t, []types.LayoutCell{
		{X: 0, Y: 0, W: 20, H: 20},
		{X: 21, Y: 0, W: 20, H: 20},
	}, page.Layout)
}

func TestAggregate(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)
	name := addTestLayer(t, wb)

	_, err = wb.Aggregate(name, "state", types.FieldTypeString, "median", "pop", types.FieldTypeInteger, "")
	require.ErrorIs(t, err, types.ErrInvalidStatistic)

	_, err = wb.Aggregate("missing", "state", types.FieldTypeString, types.StatTypeSum, "pop", types.FieldTypeInteger, "")
	require.ErrorIs(t, err, types.ErrInvalidDataset)

	out, err := wb.Aggregate(name, "state", types.FieldTypeString, types.StatTypeCount, "POP", types.FieldTypeString, "By State")
	require.NoError(t, err)
	require.Contains(t, out, "counties_")
	require.NotEqual(t, name, out)

	page := wb.Props.Pages[0]
	require.Len(t, page.Model.Items, 2)
	agg := page.Model.Items[1]
	require.Equal(t, types.OpAggregate, agg.Operation)
	require.Equal(t, name, agg.Params.Dataset)
	require.Equal(t, []string{"state"}, agg.Params.GroupBy)
	require.NotNil(t, agg.Params.Totals)
	require.False(t, *agg.Params.Totals)
	require.Equal(t, "pop_count", agg.Params.Statistics[0].OutField)

	entry := wb.Props.Workspace.Datasets[out]
	require.NotNil(t, entry)
	require.Equal(t, "By State", entry.Name)
	require.False(t, entry.Origin)
	require.Equal(t, "Count of counties", entry.Fields["pop_count"].Alias)
	require.Contains(t, entry.Fields, "state")

	var data types.AggregateData
	require.NoError(t, jsoniter.Unmarshal(entry.Data, &data))
	require.Equal(t, out, data.OutDataset)
	// count forces an integer out field regardless of the input type
	require.Equal(t, types.FieldTypeInteger, data.Metadata.Fields[1].Type)
	require.Equal(t, "e0", data.Metadata.Fields[0].Entity)
	require.Len(t, data.Tools, 1)
	require.JSONEq(t, string(wb.Props.Workspace.Datasets[name].Data), string(data.Tools[0].Params.Dataset))
	require.NotNil(t, data.Tools[0].Params.Materialize)
	require.False(t, *data.Tools[0].Params.Materialize)
}

func TestAggregateAvgFieldType(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)
	name := addTestLayer(t, wb)

	out, err := wb.Aggregate(name, "state", types.FieldTypeString, types.StatTypeAvg, "pop", types.FieldTypeInteger, "")
	require.NoError(t, err)

	var data types.AggregateData
	require.NoError(t, jsoniter.Unmarshal(wb.Props.Workspace.Datasets[out].Data, &data))
	require.Equal(t, types.FieldTypeDouble, data.Metadata.Fields[1].Type)

	// display name falls back to the internal one
	require.Equal(t, out, wb.Props.Workspace.Datasets[out].Name)
}

func TestAddChart(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)
	name := addTestLayer(t, wb)

	_, err = wb.AddChart("pie", name, "state", types.FieldTypeString, types.StatTypeSum, "pop", types.FieldTypeInteger)
	require.ErrorIs(t, err, types.ErrInvalidChartType)

	require.NoError(t, wb.AddMap(name))

	out, err := wb.AddChart(types.ChartTypeBar, name, "state", types.FieldTypeString, types.StatTypeSum, "pop", types.FieldTypeInteger)
	require.NoError(t, err)

	page := wb.Props.Pages[0]
	require.Len(t, page.Cards, 2)
	chart := page.Cards[1]
	require.Equal(t, types.CardTypeChart, chart.Type)
	require.Equal(t, "Card 2", chart.Title)
	require.Equal(t, types.ChartTypeBar, chart.Content.Type)
	require.Equal(t, out, chart.Content.Layers[0].DatasetId)
	require.NotNil(t, chart.Content.Layers[0].ChartLines)
	require.True(t, chart.Content.Layers[0].ChartLines.Mean)
	require.JSONEq(t, "{}", string(chart.Content.Layers[0].Colors))

	// the derived dataset takes the chart title as its display name
	require.Equal(t, "Bar Chart 2", wb.Props.Workspace.Datasets[out].Name)

	require.Equal(t, types.LayoutCell{X: 21, Y: 0, W: 20, H: 20}, page.Layout[1])
}

func TestUpdateDataset(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)

	lyr := types.FeatureLayer{
		ItemId: "4444dddd4444dddd4444dddd4444dddd",
		Title:  "counties",
		Url:    "https://services.example.com/rest/services/counties/FeatureServer",
	}
	name, err := wb.AddFeatureLayer(context.Background(), lyr, 0)
	require.NoError(t, err)
	oldRef := wb.Props.Workspace.Datasets[name].Data

	out, err := wb.Aggregate(name, "state", types.FieldTypeString, types.StatTypeSum, "pop", types.FieldTypeInteger, "")
	require.NoError(t, err)

	_, err = wb.UpdateDataset(context.Background(), types.FeatureLayer{Url: "https://elsewhere.example.com/FeatureServer"})
	require.ErrorIs(t, err, types.ErrLayerNotFound)

	updated, err := wb.UpdateDataset(context.Background(), lyr)
	require.NoError(t, err)
	require.Equal(t, name, updated)

	newRef := wb.Props.Workspace.Datasets[name].Data
	require.NotEqual(t, string(oldRef), string(newRef))

	// the aggregate pipeline must chase the new handle
	var data types.AggregateData
	require.NoError(t, jsoniter.Unmarshal(wb.Props.Workspace.Datasets[out].Data, &data))
	require.JSONEq(t, string(newRef), string(data.Tools[0].Params.Dataset))
}

func TestSave(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)
	name := addTestLayer(t, wb)
	require.NoError(t, wb.AddMap(name))

	require.NoError(t, wb.Save(context.Background()))

	require.Equal(t, wb.WorkspaceId, wb.Props.Id)
	require.Equal(t, "gis_user", wb.Props.Owner)
	require.Equal(t, wb.WorkbookId, wb.Props.Name)
	require.Equal(t, wb.WorkspaceUrl, wb.Props.Url)

	require.Equal(t, map[string]string{"title": "Census"}, portal.updatedProps[wb.WorkspaceId])

	var stored types.WorkbookProps
	require.NoError(t, jsoniter.Unmarshal([]byte(portal.updatedItems[wb.WorkspaceId]), &stored))
	require.Equal(t, wb.WorkspaceId, stored.Id)
	require.Len(t, stored.Pages[0].Cards, 1)
}

func TestValidateDocument(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)

	// the layout rule must compile and accept a fresh document
	v, err := getValidator()
	require.NoError(t, err)
	require.NotNil(t, v)
	require.NoError(t, wb.Validate())

	name := addTestLayer(t, wb)
	require.NoError(t, wb.AddMap(name))
	require.NoError(t, wb.Validate())

	wb.Props.Pages[0].Layout = wb.Props.Pages[0].Layout[:0]
	require.ErrorIs(t, wb.Validate(), types.ErrValidateFailed)
}

func TestSaveRejectsBrokenLayout(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)
	name := addTestLayer(t, wb)
	require.NoError(t, wb.AddMap(name))

	// card without its layout cell must not reach the portal
	page := wb.Props.Pages[0]
	page.Layout = page.Layout[:0]

	err = wb.Save(context.Background())
	require.ErrorIs(t, err, types.ErrValidateFailed)
}

func TestDeleteWorkbook(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)

	require.NoError(t, wb.Delete(context.Background()))
	require.Equal(t, []string{wb.WorkspaceId}, portal.deletedItems)
}

func TestPages(t *testing.T) {
	portal := newFakePortal()
	ic := testClient(portal)
	wb, err := NewWorkbook(context.Background(), ic, "Census")
	require.NoError(t, err)

	page := wb.AddPage("")
	require.Equal(t, "Page 2", page.Title)
	require.Equal(t, 1, wb.Props.ActivePage)

	// layers added now land on the new page
	name := addTestLayer(t, wb)
	require.Empty(t, wb.Props.Pages[0].Contents)
	require.Equal(t, name, wb.Props.Pages[1].Contents[0].Dataset)

	require.ErrorIs(t, wb.SetActivePage(5), types.ErrInvalidPage)
	require.NoError(t, wb.SetActivePage(0))
	require.Equal(t, 0, wb.Props.ActivePage)
}

func TestGeneratePatch(t *testing.T) {
	origin := types.DefaultWorkbookProps("Census")
	target := types.DefaultWorkbookProps("Census")
	target.ActivePage = 0
	target.Pages = append(target.Pages, types.NewPage("Page 2"))

	patch, err := GeneratePatch(origin, target)
	require.NoError(t, err)
	require.Contains(t, patch, `"op":"add"`)
	require.Contains(t, patch, "/pages/1")
}
