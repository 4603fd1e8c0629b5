package api

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// MarshalURL converts a request struct into URL query values. Field names are
// taken from the `synology` tag, falling back to the lowercased Go name.
// Anonymous struct fields are flattened one level, matching the way DSM
// requests embed BaseRequest.
func MarshalURL(r Request) (url.Values, error) {
	v := reflect.Indirect(reflect.ValueOf(r))
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected type struct, got %T", r)
	}
	n := v.NumField()
	vT := v.Type()
	ret := url.Values{}
	for i := 0; i < n; i++ {
		field := vT.Field(i)
		name := strings.ToLower(field.Name)
		tags := []string{}
		if tag, ok := field.Tag.Lookup("synology"); ok {
			tags = strings.Split(tag, ",")
		}
		if !(field.IsExported() || field.Anonymous || len(tags) > 0) {
			continue
		}
		if len(tags) > 0 {
			name = tags[0]
		}

		switch field.Type.Kind() {
		case reflect.String:
			ret.Add(name, v.Field(i).String())
		case reflect.Int, reflect.Int64:
			ret.Add(name, strconv.FormatInt(v.Field(i).Int(), 10))
		case reflect.Bool:
			ret.Add(name, strconv.FormatBool(v.Field(i).Bool()))
		case reflect.Slice:
			slice := v.Field(i)
			switch field.Type.Elem().Kind() {
			case reflect.String:
				res := []string{}
				for j := 0; j < slice.Len(); j++ {
					res = append(res, slice.Index(j).String())
				}
				ret.Add(name, "[\""+strings.Join(res, "\",\"")+"\"]")
			case reflect.Int:
				res := []string{}
				for j := 0; j < slice.Len(); j++ {
					res = append(res, strconv.FormatInt(slice.Index(j).Int(), 10))
				}
				ret.Add(name, "["+strings.Join(res, ",")+"]")
			}
		case reflect.Struct:
			if !field.Anonymous {
				// only embedded anonymous structs are flattened
				continue
			}
			emb := v.Field(i)
			embT := field.Type
			for j := 0; j < emb.NumField(); j++ {
				embTags := strings.Split(embT.Field(j).Tag.Get("synology"), ",")
				fieldName := embTags[0]
				if fieldName == "" {
					continue
				}
				switch emb.Field(j).Kind() {
				case reflect.String:
					ret.Add(fieldName, emb.Field(j).String())
				case reflect.Int, reflect.Int64:
					ret.Add(fieldName, strconv.FormatInt(emb.Field(j).Int(), 10))
				case reflect.Bool:
					ret.Add(fieldName, strconv.FormatBool(emb.Field(j).Bool()))
				}
			}
		}
	}

	return ret, nil
}
