package geonode

import "github.com/valyala/fastjson"

const subgraphKey = "subgraph"

// ReplaceSubgraphID walks the JSON tree and replaces the value of every
// "subgraph" key equal to oldID with newID.
func ReplaceSubgraphID(v *fastjson.Value, a *fastjson.Arena, oldID, newID string) {
	if v == nil {
		return
	}

	switch v.Type() {
	case fastjson.TypeObject:
		o, _ := v.Object()
		o.Visit(func(_ []byte, child *fastjson.Value) {
			ReplaceSubgraphID(child, a, oldID, newID)
		})

		if s := o.Get(subgraphKey); s != nil && s.Type() == fastjson.TypeString && string(s.GetStringBytes()) == oldID {
			o.Set(subgraphKey, a.NewString(newID))
		}
	case fastjson.TypeArray:
		items, _ := v.Array()
		for _, item := range items {
			ReplaceSubgraphID(item, a, oldID, newID)
		}
	}
}
