package config

import "github.com/go-viper/mapstructure/v2"

// AttributeMap is a convenience wrapper for pulling out typed information from a map.
type AttributeMap map[string]interface{}

// Has returns whether or not the given name is in the map.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// TransformAttributeMapToStruct decodes attributes on top of the struct to points to, so
// keys that are absent keep their current values. Durations may be given as strings like "20ms".
func TransformAttributeMapToStruct(to interface{}, attributes AttributeMap) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     to,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		// a typo in a key should not silently fall back to a default
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(attributes)
}
