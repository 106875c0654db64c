package openapi

import (
	"bytes"
	"fmt"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/goccy/go-yaml"

	"github.com/openapi-nexus/nexus/internal/diagnostic"
)

// DecodeJSON decodes JSON bytes into an order-preserving Value tree.
// Decoding streams tokens rather than unmarshalling into map[string]any
// so that object key order survives.
func DecodeJSON(data []byte) (Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, diagnostic.Wrap(diagnostic.KindJSONParse, err, "invalid JSON document")
	}
	return v, nil
}

func decodeJSONValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case 'n':
		return nil, nil
	case 't':
		return true, nil
	case 'f':
		return false, nil
	case '"':
		return tok.String(), nil
	case '0':
		return tok.Float(), nil
	case '{':
		m := NewMap()
		for dec.PeekKind() != '}' {
			keyTok, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			// The token is voided by the next decoder call; take the
			// key string before recursing.
			key := keyTok.String()
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		if _, err := dec.ReadToken(); err != nil { // consume '}'
			return nil, err
		}
		return m, nil
	case '[':
		var arr []Value
		for dec.PeekKind() != ']' {
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.ReadToken(); err != nil { // consume ']'
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// DecodeYAML decodes YAML bytes into an order-preserving Value tree.
func DecodeYAML(data []byte) (Value, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, diagnostic.Wrap(diagnostic.KindYAMLParse, err, "invalid YAML document")
	}
	v, err := fromYAML(raw)
	if err != nil {
		return nil, diagnostic.Wrap(diagnostic.KindYAMLParse, err, "invalid YAML document")
	}
	return v, nil
}

// fromYAML converts goccy's ordered representation (yaml.MapSlice for
// mappings) into the shared Value tree. Numbers normalize to float64
// so JSON and YAML inputs produce identical documents.
func fromYAML(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool, string, float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case yaml.MapSlice:
		m := NewMap()
		for _, item := range t {
			key, ok := item.Key.(string)
			if !ok {
				return nil, fmt.Errorf("non-string mapping key %v", item.Key)
			}
			val, err := fromYAML(item.Value)
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			val, err := fromYAML(e)
			if err != nil {
				return nil, err
			}
			arr[i] = val
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unsupported YAML value of type %T", v)
	}
}
