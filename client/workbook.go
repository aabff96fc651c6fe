package client

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	apitypes "insights-client/api/types"
	"insights-client/types"
	"insights-client/utils"

	jsoniter "github.com/json-iterator/go"
)

// Workbook wraps one Insights Workbook item: the portal item metadata
// plus the in-memory JSON document behind it. Mutating operations only
// edit the document, nothing reaches the portal until Save.
type Workbook struct {
	ic *InsightsClient

	Title string
	// WorkbookId is the random hex name of the hosted workspace
	// service backing the workbook.
	WorkbookId string
	// WorkspaceId is the portal item id.
	WorkspaceId  string
	WorkspaceUrl string
	Props        *types.WorkbookProps
}

// NewWorkbook creates a workbook item on the portal: first the hosted
// workspace service, then the item properties and the default document.
func NewWorkbook(ctx context.Context, ic *InsightsClient, title string) (*Workbook, error) {
	workbookId := utils.GenerateWorkbookId()

	workspaceUrl, err := ic.WorkspaceUrl(ctx, workbookId)
	if err != nil {
		return nil, types.Wrap(types.ErrCreateWorkbookFailed, err)
	}

	resp, err := ic.portalApi.CreateWorkspaceService(ctx, workbookId)
	if err != nil {
		return nil, types.Wrap(types.ErrCreateWorkbookFailed, err)
	}

	// Portal and ArcGIS Online report the new item under different keys
	workspaceId := resp.ItemId
	if ic.Online() {
		workspaceId = resp.ServiceItemId
	}
	if workspaceId == "" {
		return nil, types.Wrapf(types.ErrCreateWorkbookFailed, "create service response carries no item id")
	}

	itemProps := map[string]string{
		"id":    workspaceId,
		"type":  types.ItemTypeWorkbook,
		"title": title,
	}
	// Portal infers the service url, ArcGIS Online wants it spelled out
	if ic.Online() {
		itemProps["url"] = workspaceUrl
	}

	props := types.DefaultWorkbookProps(title)
	text, err := utils.Marshal(props)
	if err != nil {
		return nil, types.Wrap(types.ErrCreateWorkbookFailed, err)
	}

	// The workspace exists after the first call but the workbook is not
	// usable until the item carries the document.
	if _, err = ic.portalApi.UpdateItem(ctx, workspaceId, itemProps, string(text)); err != nil {
		return nil, types.Wrap(types.ErrCreateWorkbookFailed, err)
	}

	log.Infof("created workbook %s (item %s)", workbookId, workspaceId)

	return &Workbook{
		ic:           ic,
		Title:        title,
		WorkbookId:   workbookId,
		WorkspaceId:  workspaceId,
		WorkspaceUrl: workspaceUrl,
		Props:        props,
	}, nil
}

// OpenWorkbook loads an existing workbook item and its document.
func OpenWorkbook(ctx context.Context, ic *InsightsClient, itemId string) (*Workbook, error) {
	if !utils.IsItemId(itemId) {
		return nil, types.Wrapf(types.ErrOpenWorkbookFailed, "invalid item id: %s", itemId)
	}

	if wb := ic.loadCachedWorkbook(itemId); wb != nil {
		log.Debugf("workbook %s served from cache", itemId)
		return wb, nil
	}

	item, err := ic.portalApi.GetItem(ctx, itemId)
	if err != nil {
		return nil, types.Wrap(types.ErrOpenWorkbookFailed, err)
	}
	if item.Type != types.ItemTypeWorkbook {
		return nil, types.Wrapf(types.ErrOpenWorkbookFailed, "item %s is a %s, not an %s", itemId, item.Type, types.ItemTypeWorkbook)
	}

	data, err := ic.portalApi.GetItemData(ctx, itemId)
	if err != nil {
		return nil, types.Wrap(types.ErrOpenWorkbookFailed, err)
	}

	var props types.WorkbookProps
	if err = jsoniter.Unmarshal(data, &props); err != nil {
		return nil, types.Wrap(types.ErrOpenWorkbookFailed, err)
	}

	workspaceUrl, err := ic.WorkspaceUrl(ctx, item.Name)
	if err != nil {
		return nil, types.Wrap(types.ErrOpenWorkbookFailed, err)
	}

	wb := &Workbook{
		ic:           ic,
		Title:        item.Title,
		WorkbookId:   item.Name,
		WorkspaceId:  itemId,
		WorkspaceUrl: workspaceUrl,
		Props:        &props,
	}
	ic.cacheWorkbook(wb, len(data))
	return wb, nil
}

// ActivePage returns the page current mutations apply to.
func (wb *Workbook) ActivePage() (*types.Page, error) {
	n := wb.Props.ActivePage
	if n < 0 || n >= len(wb.Props.Pages) {
		return nil, types.Wrapf(types.ErrInvalidPage, "active page %d out of range", n)
	}
	return wb.Props.Pages[n], nil
}

// SetActivePage switches which page subsequent operations target.
func (wb *Workbook) SetActivePage(n int) error {
	if n < 0 || n >= len(wb.Props.Pages) {
		return types.Wrapf(types.ErrInvalidPage, "page %d out of range", n)
	}
	wb.Props.ActivePage = n
	return nil
}

// AddPage appends an empty page and makes it active.
func (wb *Workbook) AddPage(title string) *types.Page {
	if title == "" {
		title = fmt.Sprintf("Page %d", len(wb.Props.Pages)+1)
	}
	page := types.NewPage(title)
	wb.Props.Pages = append(wb.Props.Pages, page)
	wb.Props.ActivePage = len(wb.Props.Pages) - 1
	return page
}

// AddFeatureLayer registers a hosted feature layer as a workbook
// dataset. The workspace materializes the data server-side via the
// add-data tool, the document records the same operation so the web
// app can replay it.
func (wb *Workbook) AddFeatureLayer(ctx context.Context, lyr types.FeatureLayer, sublayer int) (string, error) {
	page, err := wb.ActivePage()
	if err != nil {
		return "", err
	}

	datasetName := utils.GenerateDatasetName(lyr.Title)
	layerUrl := lyr.Url + "/" + strconv.Itoa(sublayer)

	tools := []apitypes.ExecuteTool{{
		Name: types.OpAddData,
		Params: apitypes.ExecuteToolParams{
			Data: &types.DataSource{
				Type: types.DataTypeFeatureLayer,
				Url:  layerUrl,
			},
		},
		OutDataset: datasetName,
	}}
	resp, err := wb.ic.portalApi.Execute(ctx, wb.WorkspaceUrl, tools, []string{datasetName})
	if err != nil {
		return "", err
	}
	dataRef, ok := resp[datasetName]
	if !ok {
		return "", types.Wrapf(types.ErrInvalidDataset, "workspace returned no handle for %s", datasetName)
	}

	info, err := wb.ic.portalApi.GetLayerInfo(ctx, layerUrl)
	if err != nil {
		return "", err
	}

	page.Model.Items = append(page.Model.Items, &types.ModelItem{
		Operation: types.OpAddData,
		Params: types.ModelItemParams{
			Data: &types.DataSource{
				Type: types.DataTypeFeatureLayer,
				Url:  layerUrl,
			},
		},
		OutDataset: datasetName,
	})
	page.Contents = append(page.Contents, types.PageContent{Dataset: datasetName})
	wb.Props.Workspace.Datasets[datasetName] = &types.DatasetEntry{
		Data:  dataRef,
		Owner: lyr.ItemId,
		Fields: map[string]types.FieldInfo{
			"shape": {Alias: "Location"},
		},
		Extent: info.Extent,
		Origin: true,
	}
	return datasetName, nil
}

// UpdateDataset re-runs the add-data tool for a layer already present
// in the workbook and re-points every derived dataset at the fresh
// data handle.
func (wb *Workbook) UpdateDataset(ctx context.Context, lyr types.FeatureLayer) (string, error) {
	page, err := wb.ActivePage()
	if err != nil {
		return "", err
	}

	var addOp *types.ModelItem
	for _, item := range page.Model.Items {
		if item.Operation == types.OpAddData && item.Params.Data != nil &&
			strings.Contains(item.Params.Data.Url, lyr.Url) {
			addOp = item
			break
		}
	}
	if addOp == nil {
		return "", types.Wrapf(types.ErrLayerNotFound, "layer %s does not exist within this workbook", lyr.Url)
	}

	datasetName := addOp.OutDataset
	layerUrl := addOp.Params.Data.Url

	tools := []apitypes.ExecuteTool{{
		Name: types.OpAddData,
		Params: apitypes.ExecuteToolParams{
			Data: &types.DataSource{
				Type: types.DataTypeFeatureLayer,
				Url:  layerUrl,
			},
		},
		OutDataset: datasetName,
	}}
	resp, err := wb.ic.portalApi.Execute(ctx, wb.WorkspaceUrl, tools, []string{datasetName})
	if err != nil {
		return "", err
	}
	newRef, ok := resp[datasetName]
	if !ok {
		return "", types.Wrapf(types.ErrInvalidDataset, "workspace returned no handle for %s", datasetName)
	}

	var oldRef types.DataRef
	if entry, ok := wb.Props.Workspace.Datasets[datasetName]; ok {
		oldRef = entry.Data
	}

	info, err := wb.ic.portalApi.GetLayerInfo(ctx, layerUrl)
	if err != nil {
		return "", err
	}
	wb.Props.Workspace.Datasets[datasetName] = &types.DatasetEntry{
		Data:  newRef,
		Owner: lyr.ItemId,
		Fields: map[string]types.FieldInfo{
			"shape": {Alias: "Location"},
		},
		Extent: info.Extent,
		Origin: true,
	}

	// Derived datasets embed the stale handle inside their tool
	// pipelines, chase them all down.
	for name, entry := range wb.Props.Workspace.Datasets {
		if entry.Origin || len(entry.Data) == 0 {
			continue
		}
		var agg types.AggregateData
		if err := jsoniter.Unmarshal(entry.Data, &agg); err != nil {
			continue
		}
		changed := false
		for _, tool := range agg.Tools {
			if jsonEqual(tool.Params.Dataset, oldRef) {
				tool.Params.Dataset = newRef
				changed = true
			}
		}
		if !changed {
			continue
		}
		data, err := utils.Marshal(&agg)
		if err != nil {
			return "", types.Wrap(types.ErrInvalidDataset, err)
		}
		wb.Props.Workspace.Datasets[name].Data = data
	}

	return datasetName, nil
}

// AddMap places a map card showing the given dataset on the active
// page, positioned to the right of the existing cards.
func (wb *Workbook) AddMap(dataset string) error {
	page, err := wb.ActivePage()
	if err != nil {
		return err
	}

	entry, ok := wb.Props.Workspace.Datasets[dataset]
	if !ok {
		return types.Wrapf(types.ErrInvalidDataset, "invalid dataset name: %s", dataset)
	}

	cardCt := len(page.Cards)
	page.Cards = append(page.Cards, &types.Card{
		Type:  types.CardTypeMap,
		Title: fmt.Sprintf("Card %d", cardCt+1),
		Content: types.CardContent{
			Layers: []*types.CardLayer{{DatasetId: dataset}},
			Extent: entry.Extent,
		},
	})
	page.Layout = append(page.Layout, layoutCell(cardCt))
	return nil
}

// Aggregate adds a group-by aggregation over an existing dataset and
// returns the internal name of the derived dataset. outName, when
// given, is the display name shown to the user.
func (wb *Workbook) Aggregate(in string, groupByField string, groupByFieldType string,
	statType string, statField string, statFieldType string, outName string) (string, error) {
	page, err := wb.ActivePage()
	if err != nil {
		return "", err
	}

	switch statType {
	case types.StatTypeAvg, types.StatTypeSum, types.StatTypeCount, types.StatTypeMin, types.StatTypeMax:
	default:
		return "", types.Wrapf(types.ErrInvalidStatistic, "invalid statistic type: %s", statType)
	}

	inEntry, ok := wb.Props.Workspace.Datasets[in]
	if !ok {
		return "", types.Wrapf(types.ErrInvalidDataset, "invalid dataset name: %s", in)
	}

	base := utils.DatasetBase(in)
	outDataset := utils.GenerateDatasetName(base)
	outField := strings.ToLower(statField) + "_" + statType

	var outType string
	switch statType {
	case types.StatTypeCount:
		outType = types.FieldTypeInteger
	case types.StatTypeAvg:
		outType = types.FieldTypeDouble
	default:
		outType = statFieldType
	}

	statistics := []types.Statistic{{
		Type:     statType,
		Field:    statField,
		OutField: outField,
	}}
	totals := false
	page.Model.Items = append(page.Model.Items, &types.ModelItem{
		Operation: types.OpAggregate,
		Params: types.ModelItemParams{
			Dataset:    in,
			GroupBy:    []string{groupByField},
			Statistics: statistics,
			Totals:     &totals,
		},
		OutDataset: outDataset,
	})

	if outName == "" {
		outName = outDataset
	}

	materialize := false
	data, err := utils.Marshal(&types.AggregateData{
		Metadata: types.DataMetadata{
			Fields: []types.MetadataField{
				{
					Name:   groupByField,
					Alias:  groupByField,
					Type:   groupByFieldType,
					Entity: "e0",
				},
				{
					Name:  outField,
					Alias: outField,
					Type:  outType,
				},
			},
			Entities: []types.MetadataEntity{{
				Fields:    []string{groupByField, outField},
				KeyFields: []string{groupByField},
			}},
		},
		Tools: []*types.DataTool{{
			Name: types.OpAggregate,
			Params: types.DataToolParams{
				Dataset:     inEntry.Data,
				GroupBy:     []string{groupByField},
				Statistics:  statistics,
				Materialize: &materialize,
			},
			OutDataset: outDataset,
		}},
		OutDataset: outDataset,
	})
	if err != nil {
		return "", types.Wrap(types.ErrInvalidDataset, err)
	}

	wb.Props.Workspace.Datasets[outDataset] = &types.DatasetEntry{
		Data: data,
		Name: outName,
		Fields: map[string]types.FieldInfo{
			outField:     {Alias: titleCase(statType) + " of " + base},
			groupByField: {},
		},
	}
	return outDataset, nil
}

// AddChart aggregates the given dataset and places a bar or column
// chart card over the result.
func (wb *Workbook) AddChart(chartType string, in string, groupByField string,
	groupByFieldType string, statType string, statField string, statFieldType string) (string, error) {
	page, err := wb.ActivePage()
	if err != nil {
		return "", err
	}

	switch chartType {
	case types.ChartTypeBar, types.ChartTypeColumn:
	default:
		return "", types.Wrapf(types.ErrInvalidChartType, "invalid chart type: %s", chartType)
	}

	cardCt := len(page.Cards)
	chartTitle := fmt.Sprintf("%s Chart %d", titleCase(chartType), cardCt+1)

	outDataset, err := wb.Aggregate(in, groupByField, groupByFieldType,
		statType, statField, statFieldType, chartTitle)
	if err != nil {
		return "", err
	}

	page.Cards = append(page.Cards, &types.Card{
		Type:  types.CardTypeChart,
		Title: fmt.Sprintf("Card %d", cardCt+1),
		Content: types.CardContent{
			Layers: []*types.CardLayer{{
				DatasetId:  outDataset,
				ChartLines: &types.ChartLines{Mean: true},
				Colors:     types.DataRef("{}"),
			}},
			Type: chartType,
		},
	})
	page.Layout = append(page.Layout, layoutCell(cardCt))
	return outDataset, nil
}

// Save validates the document and posts it back to the portal item.
func (wb *Workbook) Save(ctx context.Context) error {
	self, err := wb.ic.portalApi.Self(ctx)
	if err != nil {
		return types.Wrap(types.ErrSaveWorkbookFailed, err)
	}

	// these only stick when set at save time
	wb.Props.Id = wb.WorkspaceId
	wb.Props.Owner = self.Username
	wb.Props.Name = wb.WorkbookId
	wb.Props.Url = wb.WorkspaceUrl

	if err = wb.Validate(); err != nil {
		return err
	}

	text, err := utils.Marshal(wb.Props)
	if err != nil {
		return types.Wrap(types.ErrSaveWorkbookFailed, err)
	}

	itemProps := map[string]string{"title": wb.Title}
	if _, err = wb.ic.portalApi.UpdateItem(ctx, wb.WorkspaceId, itemProps, string(text)); err != nil {
		return types.Wrap(types.ErrSaveWorkbookFailed, err)
	}

	wb.ic.cacheWorkbook(wb, len(text))
	log.Infof("saved workbook %s (item %s)", wb.WorkbookId, wb.WorkspaceId)
	return nil
}

// Delete removes the workbook item from the portal.
func (wb *Workbook) Delete(ctx context.Context) error {
	resp, err := wb.ic.portalApi.DeleteItem(ctx, wb.WorkspaceId)
	if err != nil {
		return err
	}
	if !resp.Success {
		return types.Wrapf(types.ErrPortalResponse, "portal rejected delete of item %s", wb.WorkspaceId)
	}
	if wb.ic.cacheSvc != nil {
		wb.ic.cacheSvc.Evict(workbookCacheName, wb.WorkspaceId)
	}
	return nil
}

// Validate checks the document against the workbook schema, then runs
// the layout rule once per page.
func (wb *Workbook) Validate() error {
	v, err := getValidator()
	if err != nil {
		return types.Wrap(types.ErrValidateFailed, err)
	}

	for _, page := range wb.Props.Pages {
		facts := map[string]interface{}{
			"Page": &pageStats{
				Cards:  len(page.Cards),
				Layout: len(page.Layout),
			},
		}
		if err = v.Validate(wb.Props, facts); err != nil {
			return types.Wrap(types.ErrValidateFailed, err)
		}
	}
	return nil
}

func layoutCell(cardCt int) types.LayoutCell {
	// place the new card to the right of the last one, with a one
	// unit gutter
	return types.LayoutCell{
		X: cardCt*20 + cardCt,
		Y: 0,
		W: 20,
		H: 20,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func jsonEqual(a types.DataRef, b types.DataRef) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	var av, bv interface{}
	if err := jsoniter.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := jsoniter.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
