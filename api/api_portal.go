package api

import (
	"context"

	apitypes "insights-client/api/types"
)

// PortalApi is the slice of the GIS portal REST surface the workbook
// client needs. All endpoint shapes are vendor-fixed.
type PortalApi interface {
	// CreateWorkspaceService provisions the hosted workspace backing a
	// new workbook. The returned item id differs between ArcGIS Online
	// and Portal deployments.
	CreateWorkspaceService(ctx context.Context, name string) (apitypes.CreateServiceResp, error)

	// UpdateItem posts item properties plus the serialized workbook
	// document as the item's data text.
	UpdateItem(ctx context.Context, itemId string, itemProps map[string]string, dataText string) (apitypes.UpdateItemResp, error)

	GetItem(ctx context.Context, itemId string) (apitypes.ItemResp, error)

	// GetItemData fetches the raw workbook JSON stored behind an item.
	GetItemData(ctx context.Context, itemId string) ([]byte, error)

	DeleteItem(ctx context.Context, itemId string) (apitypes.DeleteItemResp, error)

	// Self describes the signed-in portal user.
	Self(ctx context.Context) (apitypes.SelfResp, error)

	// GetLayerInfo fetches feature layer metadata from a layer URL,
	// including its extent and field list.
	GetLayerInfo(ctx context.Context, layerUrl string) (apitypes.LayerInfoResp, error)

	// Execute runs workspace tools against a workbook's hosted
	// workspace service and returns one data handle per out dataset.
	Execute(ctx context.Context, workspaceUrl string, tools []apitypes.ExecuteTool, outDatasets []string) (apitypes.ExecuteResp, error)
}
