package types

import "cosmossdk.io/errors"

var (
	ModulePortal   = "portal"
	ModuleWorkbook = "workbook"
	ModuleCache    = "cache"
	ModuleConfig   = "config"

	ErrCreateServiceFailed = errors.Register(ModulePortal, 10000, "failed to create the workspace service")
	ErrUpdateItemFailed    = errors.Register(ModulePortal, 10001, "failed to update the workbook item")
	ErrGetItemFailed       = errors.Register(ModulePortal, 10002, "failed to get the item information")
	ErrGetItemDataFailed   = errors.Register(ModulePortal, 10003, "failed to get the item data")
	ErrDeleteItemFailed    = errors.Register(ModulePortal, 10004, "failed to delete the item")
	ErrExecuteToolFailed   = errors.Register(ModulePortal, 10005, "failed to execute the workspace tool")
	ErrGetSelfFailed       = errors.Register(ModulePortal, 10006, "failed to get the signed-in user")
	ErrGetLayerInfoFailed  = errors.Register(ModulePortal, 10007, "failed to get the feature layer information")
	ErrPortalResponse      = errors.Register(ModulePortal, 10008, "the portal returned an error response")

	ErrCreateWorkbookFailed = errors.Register(ModuleWorkbook, 11000, "failed to create the workbook")
	ErrOpenWorkbookFailed   = errors.Register(ModuleWorkbook, 11001, "failed to open the workbook")
	ErrSaveWorkbookFailed   = errors.Register(ModuleWorkbook, 11002, "failed to save the workbook")
	ErrInvalidDataset       = errors.Register(ModuleWorkbook, 11003, "invalid dataset name")
	ErrLayerNotFound        = errors.Register(ModuleWorkbook, 11004, "the layer does not exist within this workbook")
	ErrInvalidChartType     = errors.Register(ModuleWorkbook, 11005, "invalid chart type")
	ErrInvalidStatistic     = errors.Register(ModuleWorkbook, 11006, "invalid statistic type")
	ErrInvalidPage          = errors.Register(ModuleWorkbook, 11007, "invalid page index")
	ErrValidateFailed       = errors.Register(ModuleWorkbook, 11008, "failed to validate the workbook document")
	ErrRuleExecuteFailed    = errors.Register(ModuleWorkbook, 11009, "failed to execute the validation rule")

	ErrNotFound          = errors.Register(ModuleCache, 12000, "not found")
	ErrConflictName      = errors.Register(ModuleCache, 12001, "the name is conflicting")
	ErrCreateCacheFailed = errors.Register(ModuleCache, 12002, "failed to create the cache")

	ErrInvalidConfig      = errors.Register(ModuleConfig, 13000, "invalid config")
	ErrEncodeConfigFailed = errors.Register(ModuleConfig, 13001, "failed to encode the config")
	ErrDecodeConfigFailed = errors.Register(ModuleConfig, 13002, "failed to decode the config")
	ErrReadConfigFailed   = errors.Register(ModuleConfig, 13003, "failed to read the config file")
	ErrWriteConfigFailed  = errors.Register(ModuleConfig, 13004, "failed to write the config file")
)

func Wrap(err0 error, err1 error) error {
	return errors.Wrapf(err0, ", due to %v", err1)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
