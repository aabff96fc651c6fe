package apiclient

import (
	"context"
	"fmt"
	"net/url"

	apitypes "insights-client/api/types"
	"insights-client/types"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/xerrors"
)

func (c *portalConn) userContentUrl(user string) string {
	return c.portalUrl + sharingRestPath + "/content/users/" + user
}

func (c *portalConn) itemUrl(itemId string) string {
	return c.portalUrl + sharingRestPath + "/content/items/" + itemId
}

func (c *portalConn) Self(ctx context.Context) (apitypes.SelfResp, error) {
	if c.selfInfo != nil {
		return *c.selfInfo, nil
	}

	var resp apitypes.SelfResp
	err := c.getJson(ctx, c.portalUrl+communitySelfPath, nil, &resp)
	if err != nil {
		return resp, types.Wrap(types.ErrGetSelfFailed, err)
	}
	if resp.Username == "" {
		return resp, types.Wrapf(types.ErrGetSelfFailed, "no signed-in user, check the token")
	}

	c.selfInfo = &resp
	return resp, nil
}

func (c *portalConn) CreateWorkspaceService(ctx context.Context, name string) (apitypes.CreateServiceResp, error) {
	var resp apitypes.CreateServiceResp

	self, err := c.Self(ctx)
	if err != nil {
		return resp, err
	}

	form := url.Values{
		"createParameters": {fmt.Sprintf(`{"name": "%s"}`, name)},
		"targetType":       {"workspaceService"},
	}
	err = c.postForm(ctx, c.userContentUrl(self.Username)+"/createService", form, &resp)
	if err != nil {
		return resp, types.Wrap(types.ErrCreateServiceFailed, err)
	}
	if resp.ItemId == "" && resp.ServiceItemId == "" {
		return resp, types.Wrapf(types.ErrCreateServiceFailed, "no item id in response")
	}
	return resp, nil
}

func (c *portalConn) UpdateItem(ctx context.Context, itemId string, itemProps map[string]string, dataText string) (apitypes.UpdateItemResp, error) {
	var resp apitypes.UpdateItemResp

	self, err := c.Self(ctx)
	if err != nil {
		return resp, err
	}

	form := url.Values{}
	for k, v := range itemProps {
		form.Set(k, v)
	}
	if dataText != "" {
		form.Set("text", dataText)
	}

	err = c.postForm(ctx, c.userContentUrl(self.Username)+"/items/"+itemId+"/update", form, &resp)
	if err != nil {
		return resp, types.Wrap(types.ErrUpdateItemFailed, err)
	}
	if !resp.Success {
		return resp, types.Wrapf(types.ErrUpdateItemFailed, "the portal rejected the update of item %s", itemId)
	}
	return resp, nil
}

func (c *portalConn) GetItem(ctx context.Context, itemId string) (apitypes.ItemResp, error) {
	var resp apitypes.ItemResp
	err := c.getJson(ctx, c.itemUrl(itemId), nil, &resp)
	if err != nil {
		return resp, types.Wrap(types.ErrGetItemFailed, err)
	}
	return resp, nil
}

func (c *portalConn) GetItemData(ctx context.Context, itemId string) ([]byte, error) {
	var body []byte
	err := c.getJson(ctx, c.itemUrl(itemId)+"/data", nil, &body)
	if err != nil {
		return nil, types.Wrap(types.ErrGetItemDataFailed, err)
	}
	return body, nil
}

func (c *portalConn) DeleteItem(ctx context.Context, itemId string) (apitypes.DeleteItemResp, error) {
	var resp apitypes.DeleteItemResp

	self, err := c.Self(ctx)
	if err != nil {
		return resp, err
	}

	err = c.postForm(ctx, c.userContentUrl(self.Username)+"/items/"+itemId+"/delete", nil, &resp)
	if err != nil {
		return resp, types.Wrap(types.ErrDeleteItemFailed, err)
	}
	return resp, nil
}

func (c *portalConn) GetLayerInfo(ctx context.Context, layerUrl string) (apitypes.LayerInfoResp, error) {
	var resp apitypes.LayerInfoResp
	err := c.getJson(ctx, layerUrl, nil, &resp)
	if err != nil {
		return resp, types.Wrap(types.ErrGetLayerInfoFailed, err)
	}
	return resp, nil
}

func (c *portalConn) Execute(ctx context.Context, workspaceUrl string, tools []apitypes.ExecuteTool, outDatasets []string) (apitypes.ExecuteResp, error) {
	toolsJson, err := jsoniter.Marshal(tools)
	if err != nil {
		return nil, xerrors.Errorf(err.Error())
	}
	outJson, err := jsoniter.Marshal(outDatasets)
	if err != nil {
		return nil, xerrors.Errorf(err.Error())
	}

	form := url.Values{
		"tools":       {string(toolsJson)},
		"outDatasets": {string(outJson)},
	}

	var resp apitypes.ExecuteResp
	err = c.postForm(ctx, workspaceUrl+"/execute", form, &resp)
	if err != nil {
		return nil, types.Wrap(types.ErrExecuteToolFailed, err)
	}
	return resp, nil
}
