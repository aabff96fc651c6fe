package utils

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/xerrors"
)

var itemIdRegexp = regexp.MustCompile(`^[0-9a-f]{32}$`)

// IsItemId reports whether content looks like a portal item id.
func IsItemId(content string) bool {
	return itemIdRegexp.MatchString(strings.ToLower(content))
}

// GenerateWorkbookId returns the random 8-digit hex name used for the
// workbook's hosted workspace service.
func GenerateWorkbookId() string {
	return fmt.Sprintf("%08x", rand.Uint32())
}

// GenerateDatasetName appends a random 7-digit hex suffix to the base
// name, the naming scheme for internal workspace datasets.
func GenerateDatasetName(base string) string {
	return fmt.Sprintf("%s_%07x", base, rand.Int31n(1<<28))
}

// DatasetBase strips the random suffix off an internal dataset name.
func DatasetBase(name string) string {
	if i := strings.Index(name, "_"); i >= 0 {
		return name[:i]
	}
	return name
}

func GenerateClientId() string {
	return uuid.NewV4().String()
}

func UnMarshal(jsonString []byte, path ...interface{}) (interface{}, error) {
	result := jsoniter.Get(jsonString, path...)
	return result.GetInterface(), result.LastError()
}

func Marshal(obj interface{}) ([]byte, error) {
	b, err := jsoniter.Marshal(obj)
	if err != nil {
		return nil, xerrors.Errorf(err.Error())
	}

	return b, nil
}
