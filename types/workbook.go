package types

import "encoding/json"

const (
	// WorkbookFormat is the document format version the Insights web app
	// currently understands.
	WorkbookFormat = 9

	ItemTypeWorkbook = "Insights Workbook"

	CardTypeMap   = "map"
	CardTypeChart = "chart"

	ChartTypeBar    = "bar"
	ChartTypeColumn = "column"

	StatTypeAvg   = "avg"
	StatTypeSum   = "sum"
	StatTypeCount = "count"
	StatTypeMin   = "min"
	StatTypeMax   = "max"

	FieldTypeString  = "esriFieldTypeString"
	FieldTypeInteger = "esriFieldTypeInteger"
	FieldTypeDouble  = "esriFieldTypeDouble"

	OpAddData   = "add-data"
	OpAggregate = "aggregate"

	DataTypeFeatureLayer = "feature-layer"
)

// DataRef is an opaque data handle minted by the workspace service. The
// shape is vendor-internal and changes between releases, so it is kept
// as raw JSON and only ever compared or copied.
type DataRef = json.RawMessage

// WorkbookProps is the full JSON data object stored behind an Insights
// Workbook item. Field order and defaults follow what the Insights web
// app itself posts on workbook creation.
type WorkbookProps struct {
	Format     int       `json:"format"`
	Title      string    `json:"title"`
	Pages      []*Page   `json:"pages"`
	ActivePage int       `json:"activePage"`
	Workspace  Workspace `json:"workspace"`

	SSL               bool        `json:"_ssl"`
	Created           int64       `json:"created"`
	Modified          int64       `json:"modified"`
	GUID              *string     `json:"guid"`
	Type              string      `json:"type"`
	TypeKeywords      []string    `json:"typeKeywords"`
	Description       *string     `json:"description"`
	Tags              []string    `json:"tags"`
	Snippet           *string     `json:"snippet"`
	Thumbnail         *string     `json:"thumbnail"`
	Documentation     *string     `json:"documentation"`
	Extent            [][]float64 `json:"extent"`
	Categories        []string    `json:"categories"`
	SpatialReference  interface{} `json:"spatialReference"`
	AccessInformation *string     `json:"accessInformation"`
	LicenseInfo       *string     `json:"licenseInfo"`
	Culture           string      `json:"culture"`
	Properties        interface{} `json:"properties"`
	ProxyFilter       interface{} `json:"proxyFilter"`
	Access            string      `json:"access"`
	Size              int64       `json:"size"`
	AppCategories     []string    `json:"appCategories"`
	Industries        []string    `json:"industries"`
	Languages         []string    `json:"languages"`
	LargeThumbnail    *string     `json:"largeThumbnail"`
	Banner            *string     `json:"banner"`
	Screenshots       []string    `json:"screenshots"`
	Listed            bool        `json:"listed"`
	OwnerFolder       *string     `json:"ownerFolder"`
	Protected         bool        `json:"protected"`
	CommentsEnabled   bool        `json:"commentsEnabled"`
	NumComments       int         `json:"numComments"`
	NumRatings        int         `json:"numRatings"`
	AvgRating         float64     `json:"avgRating"`
	NumViews          int         `json:"numViews"`
	ItemControl       string      `json:"itemControl"`
	ScoreCompleteness int         `json:"scoreCompleteness"`
	GroupDesignations interface{} `json:"groupDesignations"`

	// stamped right before each save
	Id    string `json:"id,omitempty"`
	Owner string `json:"owner,omitempty"`
	Name  string `json:"name,omitempty"`
	Url   string `json:"url,omitempty"`
}

type Workspace struct {
	Datasets map[string]*DatasetEntry `json:"datasets"`
}

type Page struct {
	Title    string        `json:"title"`
	Model    PageModel     `json:"model"`
	Cards    []*Card       `json:"cards"`
	Layout   []LayoutCell  `json:"layout"`
	Contents []PageContent `json:"contents"`
}

type PageModel struct {
	Items []*ModelItem `json:"items"`
}

// ModelItem records one operation of the page's analysis pipeline.
type ModelItem struct {
	Operation  string          `json:"operation"`
	Params     ModelItemParams `json:"params"`
	OutDataset string          `json:"outDataset"`
}

type ModelItemParams struct {
	Data       *DataSource `json:"data,omitempty"`
	Dataset    string      `json:"dataset,omitempty"`
	GroupBy    []string    `json:"groupBy,omitempty"`
	Statistics []Statistic `json:"statistics,omitempty"`
	Totals     *bool       `json:"totals,omitempty"`
}

type DataSource struct {
	Type string `json:"type"`
	Url  string `json:"url"`
}

type Statistic struct {
	Type     string `json:"type"`
	Field    string `json:"field"`
	OutField string `json:"outField"`
}

type PageContent struct {
	Dataset string `json:"dataset"`
}

type Card struct {
	Type    string      `json:"type"`
	Title   string      `json:"title"`
	Content CardContent `json:"content"`
}

type CardContent struct {
	Layers []*CardLayer `json:"layers"`
	Extent *Extent      `json:"extent,omitempty"`
	// chart type for chart cards, empty for maps
	Type string `json:"type,omitempty"`
}

type CardLayer struct {
	DatasetId  string          `json:"datasetId"`
	ChartLines *ChartLines     `json:"chartLines,omitempty"`
	Colors     json.RawMessage `json:"colors,omitempty"`
}

type ChartLines struct {
	Mean bool `json:"mean"`
}

type LayoutCell struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// DatasetEntry describes one dataset of the workbook's internal
// workspace. Origin entries point at remote feature layers, the rest
// are derived by workspace tools.
type DatasetEntry struct {
	Data   DataRef              `json:"data"`
	Owner  string               `json:"owner,omitempty"`
	Name   string               `json:"name,omitempty"`
	Fields map[string]FieldInfo `json:"fields,omitempty"`
	Extent *Extent              `json:"extent,omitempty"`
	Origin bool                 `json:"origin,omitempty"`
}

type FieldInfo struct {
	Alias string `json:"alias,omitempty"`
}

// AggregateData is the data block the client assembles for derived
// datasets. Unlike origin data handles its shape is under our control.
type AggregateData struct {
	Metadata   DataMetadata `json:"metadata"`
	Tools      []*DataTool  `json:"tools"`
	OutDataset string       `json:"outDataset"`
}

type DataMetadata struct {
	Fields   []MetadataField  `json:"fields"`
	Entities []MetadataEntity `json:"entities"`
}

type MetadataField struct {
	Name   string `json:"name"`
	Alias  string `json:"alias"`
	Type   string `json:"type"`
	Entity string `json:"entity,omitempty"`
}

type MetadataEntity struct {
	Fields    []string `json:"fields"`
	KeyFields []string `json:"keyFields"`
}

type DataTool struct {
	Name       string         `json:"name"`
	Params     DataToolParams `json:"params"`
	OutDataset string         `json:"outDataset"`
}

type DataToolParams struct {
	Dataset     DataRef     `json:"dataset,omitempty"`
	GroupBy     []string    `json:"groupBy,omitempty"`
	Statistics  []Statistic `json:"statistics,omitempty"`
	Materialize *bool       `json:"materialize,omitempty"`
}

type Extent struct {
	XMin             float64           `json:"xmin"`
	YMin             float64           `json:"ymin"`
	XMax             float64           `json:"xmax"`
	YMax             float64           `json:"ymax"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}

type SpatialReference struct {
	Wkid       int `json:"wkid,omitempty"`
	LatestWkid int `json:"latestWkid,omitempty"`
}

// FeatureLayer identifies a hosted feature layer item to pull into a
// workbook.
type FeatureLayer struct {
	ItemId string
	Title  string
	Url    string
}

// NewPage returns an empty page shaped the way the Insights web app
// expects: all collections present, none null.
func NewPage(title string) *Page {
	return &Page{
		Title:    title,
		Model:    PageModel{Items: []*ModelItem{}},
		Cards:    []*Card{},
		Layout:   []LayoutCell{},
		Contents: []PageContent{},
	}
}

// DefaultWorkbookProps is the full set of default JSON data properties
// for a freshly created workbook item.
func DefaultWorkbookProps(title string) *WorkbookProps {
	return &WorkbookProps{
		Format:            WorkbookFormat,
		Title:             title,
		Pages:             []*Page{NewPage("Page 1")},
		ActivePage:        0,
		Workspace:         Workspace{Datasets: map[string]*DatasetEntry{}},
		SSL:               true,
		Type:              ItemTypeWorkbook,
		TypeKeywords:      []string{"Application", "ArcGIS", "Insights Workbook", "Hosted Service"},
		Tags:              []string{},
		Extent:            [][]float64{},
		Categories:        []string{},
		Culture:           "english (united states)",
		Access:            "private",
		AppCategories:     []string{},
		Industries:        []string{},
		Languages:         []string{},
		Screenshots:       []string{},
		CommentsEnabled:   true,
		NumViews:          3,
		ItemControl:       "admin",
	}
}
