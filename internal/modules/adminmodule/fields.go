package adminmodule

import (
	"encoding/json"
	"reflect"
	"strings"
)

// toMap projects an object onto its JSON representation
func toMap(obj interface{}) map[string]interface{} {
	data, err := json.Marshal(obj)
	if err != nil {
		return map[string]interface{}{}
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}

// fieldByJSON finds the struct field carrying the given JSON name
func fieldByJSON(v reflect.Value, name string) (reflect.Value, bool) {
	v = reflect.Indirect(v)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func objectID(obj interface{}) uint {
	return uint(reflect.Indirect(reflect.ValueOf(obj)).FieldByName("ID").Uint())
}

func setObjectID(obj interface{}, id uint) {
	reflect.Indirect(reflect.ValueOf(obj)).FieldByName("ID").SetUint(uint64(id))
}

// setUint sets an unsigned integer field by JSON name
func setUint(obj interface{}, name string, value uint) bool {
	f, ok := fieldByJSON(reflect.ValueOf(obj), name)
	if !ok || !f.CanSet() {
		return false
	}
	switch f.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f.SetUint(uint64(value))
		return true
	}
	return false
}

// restoreFields copies the named fields from src back into dst
func restoreFields(dst, src interface{}, names []string) {
	for _, name := range names {
		to, ok := fieldByJSON(reflect.ValueOf(dst), name)
		if !ok || !to.CanSet() {
			continue
		}
		from, _ := fieldByJSON(reflect.ValueOf(src), name)
		to.Set(from)
	}
}
