package apitypes

import (
	"encoding/json"
	"fmt"

	"insights-client/types"
)

// PortalError is the error envelope the portal returns inside an
// HTTP 200 response.
type PortalError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *PortalError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("portal error %d: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("portal error %d: %s", e.Code, e.Message)
}

type CreateServiceResp struct {
	Success bool `json:"success"`
	// ItemId is set by Portal deployments.
	ItemId string `json:"itemId"`
	// ServiceItemId is set by ArcGIS Online.
	ServiceItemId string `json:"serviceItemId"`
	Name          string `json:"name"`
	ServiceUrl    string `json:"serviceurl"`
}

type UpdateItemResp struct {
	Success bool   `json:"success"`
	Id      string `json:"id"`
}

type DeleteItemResp struct {
	Success bool   `json:"success"`
	ItemId  string `json:"itemId"`
}

type ItemResp struct {
	Id    string `json:"id"`
	Owner string `json:"owner"`
	Title string `json:"title"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Url   string `json:"url"`
}

type SelfResp struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	OrgId    string `json:"orgId"`
}

type LayerInfoResp struct {
	Id     int           `json:"id"`
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Extent *types.Extent `json:"extent"`
	Fields []LayerField  `json:"fields"`
}

type LayerField struct {
	Name  string `json:"name"`
	Alias string `json:"alias"`
	Type  string `json:"type"`
}

// ExecuteTool is one entry of the tools array posted to the workspace
// execute endpoint.
type ExecuteTool struct {
	Name       string            `json:"name"`
	Params     ExecuteToolParams `json:"params"`
	OutDataset string            `json:"outDataset"`
}

type ExecuteToolParams struct {
	Data *types.DataSource `json:"data,omitempty"`
}

// ExecuteResp maps each out dataset name to the opaque data handle the
// workspace minted for it.
type ExecuteResp map[string]json.RawMessage
