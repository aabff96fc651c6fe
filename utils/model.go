package utils

import (
	"encoding/json"
	"strings"

	applier "github.com/evanphx/json-patch"
	creator "github.com/mattbaird/jsonpatch"

	"golang.org/x/xerrors"
)

// GeneratePatch diffs two JSON documents into an RFC 6902 patch.
// Remove operations come first, deepest array index ahead, so applying
// the patch never shifts an index it still needs.
func GeneratePatch(contentOrigin string, contentTarget string) (string, error) {
	if !json.Valid([]byte(contentOrigin)) {
		return "", xerrors.Errorf("origin document is not valid JSON")
	}

	ops, err := creator.CreatePatch([]byte(contentOrigin), []byte(contentTarget))
	if err != nil {
		return "", xerrors.Errorf(err.Error())
	}

	var removes, rest []string
	for _, op := range ops {
		if op.Operation == "remove" {
			removes = append(removes, op.Json())
		} else {
			rest = append(rest, op.Json())
		}
	}

	ordered := make([]string, 0, len(ops))
	for i := len(removes) - 1; i >= 0; i-- {
		ordered = append(ordered, removes[i])
	}
	ordered = append(ordered, rest...)

	return "[" + strings.Join(ordered, ",") + "]", nil
}

// ApplyPatch applies an RFC 6902 patch to a document, returning the
// patched JSON.
func ApplyPatch(doc []byte, patch []byte) ([]byte, error) {
	decoded, err := applier.DecodePatch(patch)
	if err != nil {
		return nil, xerrors.Errorf("decode patch: %v", err)
	}

	patched, err := decoded.Apply(doc)
	if err != nil {
		return nil, xerrors.Errorf("apply patch: %v", err)
	}

	return patched, nil
}
