package capability

import (
	"github.com/mensylisir/opsagent/pkg/util"
)

// Extractor looks for a value in the JSON form of a payload.
type Extractor struct {
	Path string
}

// Extract returns the value at e.Path. Null values count as not found.
func (e Extractor) Extract(payload []byte) (interface{}, bool) {
	return util.GetJsonValue(payload, e.Path)
}

// IDExtractors is the ordered search for a created resource id: a direct
// field, the first element of a "secrets" list, then the same two shapes
// wrapped in one "data" object.
var IDExtractors = []Extractor{
	{Path: "id"},
	{Path: "secrets.0.id"},
	{Path: "data.id"},
	{Path: "data.secrets.0.id"},
}

// Export binds the first value found by Extractors under Key.
type Export struct {
	Key        string
	Extractors []Extractor
}

// Extract runs the extractors in order over payload and returns the first hit.
func (x Export) Extract(payload interface{}) (interface{}, bool) {
	if payload == nil || x.Key == "" {
		return nil, false
	}
	data := util.ToJSON(payload)
	if len(data) == 0 {
		return nil, false
	}
	for _, e := range x.Extractors {
		if v, ok := e.Extract(data); ok {
			return v, true
		}
	}
	return nil, false
}

func idExport(key string) Export {
	return Export{Key: key, Extractors: IDExtractors}
}
