// Package mcputils binds loosely typed MCP tool arguments to Go structs.
package mcputils

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is satisfied by mcp.CallToolRequest.
type ArgumentGetter interface {
	GetArguments() map[string]any
}

// BindArguments decodes request arguments into target using json tags.
// Clients often send every value as a string, so "true", "3" and
// JSON-encoded arrays or objects are coerced to the field's type.
func BindArguments[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}

// jsonStringHook unpacks JSON text sent where a structured value is expected.
func jsonStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Slice:
		if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
			ptr := reflect.New(to)
			if err := json.Unmarshal([]byte(raw), ptr.Interface()); err == nil {
				return ptr.Elem().Interface(), nil
			}
		}
	case reflect.Map, reflect.Struct:
		if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
			var out any
			if err := json.Unmarshal([]byte(raw), &out); err == nil {
				return out, nil
			}
		}
	}
	return data, nil
}
