package docstore

// setPath writes value at path inside data, creating intermediate objects
// and replacing non-object intermediates.
func setPath(data map[string]any, path []string, value any) {
	node := data
	for _, seg := range path[:len(path)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[seg] = next
		}
		node = next
	}
	node[path[len(path)-1]] = value
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func copyDocument(d *Document) *Document {
	return &Document{Key: d.Key, Version: d.Version, Data: deepCopyMap(d.Data)}
}
