package repository

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/noah-isme/gema-events-api/internal/models"
)

const dateLayout = "2006-01-02"

var (
	schemaCache = &sync.Map{}
	dateType    = reflect.TypeOf(datatypes.Date{})
	timeType    = reflect.TypeOf(time.Time{})
)

func parseSchema(db *gorm.DB, model any) (*schema.Schema, error) {
	sch, err := schema.Parse(model, schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return sch, nil
}

// dateHook accepts "2006-01-02", RFC3339 strings and time.Time for datatypes.Date fields.
func dateHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != dateType {
		return data, nil
	}
	switch {
	case from.Kind() == reflect.String:
		raw := data.(string)
		if parsed, err := time.Parse(dateLayout, raw); err == nil {
			return datatypes.Date(parsed), nil
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", raw)
		}
		return datatypes.Date(parsed), nil
	case from == timeType:
		return datatypes.Date(data.(time.Time)), nil
	}
	return data, nil
}

// decodeAttributes assigns attrs onto target, a pointer to a model.
func decodeAttributes(target any, attrs map[string]any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		DecodeHook:       dateHook,
		Result:           target,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(attrs); err != nil {
		return fmt.Errorf("decode attributes: %w", err)
	}
	return nil
}

func checkFillable(model models.Entity, attrs Attributes) error {
	fillable := model.FillableFields()
	for key := range attrs {
		if !slices.Contains(fillable, key) {
			return fmt.Errorf("%w: %s on %s", ErrUnknownField, key, model.EntityName())
		}
	}
	return nil
}

// columnValues reads the typed value of each named column from a decoded model.
func columnValues(ctx context.Context, sch *schema.Schema, model any, names []string) (map[string]any, error) {
	rv := reflect.Indirect(reflect.ValueOf(model))
	values := make(map[string]any, len(names))
	for _, name := range names {
		field := sch.LookUpField(name)
		if field == nil || field.DBName == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		value, _ := field.ValueOf(ctx, rv)
		values[field.DBName] = value
	}
	return values, nil
}

// typedAttributes decodes attrs onto a fresh model and returns column => typed value.
func typedAttributes[T any](ctx context.Context, sch *schema.Schema, attrs Attributes) (map[string]any, error) {
	probe := new(T)
	if err := decodeAttributes(probe, attrs); err != nil {
		return nil, err
	}
	return columnValues(ctx, sch, probe, attrs.keys())
}

func (a Attributes) keys() []string {
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func mergeColumns(dst map[string]any, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
