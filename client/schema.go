package client

import (
	"sync"

	"insights-client/model/schema/validator"
)

// WorkbookSchema is the structural contract a workbook document must
// satisfy before it is sent to the portal.
const WorkbookSchema = `{
	"type": "object",
	"required": ["format", "title", "pages", "workspace"],
	"properties": {
		"format": {"type": "integer", "minimum": 1},
		"title": {"type": "string", "minLength": 1},
		"activePage": {"type": "integer", "minimum": 0},
		"pages": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["title", "model", "cards", "layout", "contents"],
				"properties": {
					"title": {"type": "string"},
					"model": {
						"type": "object",
						"required": ["items"]
					},
					"cards": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["type", "title", "content"]
						}
					},
					"layout": {"type": "array"},
					"contents": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["dataset"]
						}
					}
				}
			}
		},
		"workspace": {
			"type": "object",
			"required": ["datasets"]
		}
	}
}`

// cardsHaveLayoutRule rejects pages whose card count drifted from the
// layout grid. Facts are fed per page as a pageStats struct.
const cardsHaveLayoutRule = `{
	"name": "CardsHaveLayout",
	"desc": "every card on a page owns exactly one layout cell",
	"salience": 10,
	"when": "Result.IsValid && Page.Cards != Page.Layout",
	"then": [
		"Result.IsValid = false",
		"Result.Reason = \"page card count does not match layout\""
	]
}`

var (
	workbookValidator   *validator.Validator
	validatorOnce       sync.Once
	validatorInitialErr error
)

func getValidator() (*validator.Validator, error) {
	validatorOnce.Do(func() {
		workbookValidator, validatorInitialErr = validator.NewWorkbookValidator(
			"workbook", WorkbookSchema, cardsHaveLayoutRule)
	})
	return workbookValidator, validatorInitialErr
}

// pageStats is the fact shape consumed by the layout rule.
type pageStats struct {
	Cards  int
	Layout int
}
