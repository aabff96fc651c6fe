package client

import (
	"insights-client/types"
	"insights-client/utils"
)

// GeneratePatch diffs two workbook documents into an RFC 6902 patch,
// handy for inspecting what a batch of mutations will change before
// saving.
func GeneratePatch(origin *types.WorkbookProps, target *types.WorkbookProps) (string, error) {
	originText, err := utils.Marshal(origin)
	if err != nil {
		return "", err
	}
	targetText, err := utils.Marshal(target)
	if err != nil {
		return "", err
	}

	return utils.GeneratePatch(string(originText), string(targetText))
}
