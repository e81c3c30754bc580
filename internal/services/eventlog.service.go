package services

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"context"

	"monitor/internal/database"
	"monitor/internal/logger"
	. "monitor/internal/models"

	"gorm.io/gorm"
)

// DiffEntry is one changed field in an event-history row. The stored
// form is JSON; the " -> " separator appears only when rendering.
type DiffEntry struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (d DiffEntry) Render() string {
	return d.Old + " -> " + d.New
}

// ParseDiffValue splits a rendered diff on the first " -> " occurrence,
// so separators inside data survive re-parsing.
func ParseDiffValue(rendered string) DiffEntry {
	old, new, found := strings.Cut(rendered, " -> ")
	if !found {
		return DiffEntry{New: rendered}
	}
	return DiffEntry{Old: old, New: new}
}

// EventLogger appends create/update rows to the event history inside
// the caller's transaction.
type EventLogger struct {
	db  database.DB
	log logger.Logger
}

func NewEventLogger(db database.DB) *EventLogger {
	return &EventLogger{
		db:  db,
		log: logger.New("EventLogger"),
	}
}

func (s *EventLogger) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := GetTransaction(ctx); ok {
		return tx
	}
	return s.db.SQLWithContext(ctx)
}

// LogCreate appends a create row holding the full field set as new
// values.
func (s *EventLogger) LogCreate(ctx context.Context, actorID string, caseID *string, entity any) error {
	log := s.log.Function("LogCreate")

	fields := FieldValues(entity)
	diff := make(map[string]DiffEntry, len(fields))
	for name, value := range fields {
		diff[name] = DiffEntry{New: value}
	}

	return s.append(ctx, log, actorID, caseID, entity, EventHistoryCreate, diff)
}

// LogUpdate computes the field diff between the stored and incoming
// entity and appends an update row when it is non-empty. The boolean
// reports whether anything changed.
func (s *EventLogger) LogUpdate(ctx context.Context, actorID string, caseID *string, old, updated any) (bool, error) {
	log := s.log.Function("LogUpdate")

	diff := ComputeDiff(old, updated)
	if len(diff) == 0 {
		return false, nil
	}

	if err := s.append(ctx, log, actorID, caseID, updated, EventHistoryUpdate, diff); err != nil {
		return false, err
	}
	return true, nil
}

func (s *EventLogger) append(
	ctx context.Context,
	log logger.Logger,
	actorID string,
	caseID *string,
	entity any,
	eventType string,
	diff map[string]DiffEntry,
) error {
	payload, err := json.Marshal(diff)
	if err != nil {
		return log.Err("failed to marshal diff", err)
	}

	row := EventHistory{
		CaseID:      caseID,
		CreatedByID: actorID,
		ContentType: ContentTypeOf(entity),
		ObjectID:    entityID(entity),
		EventType:   eventType,
		Diff:        string(payload),
	}

	if err := s.getDB(ctx).Create(&row).Error; err != nil {
		return log.Err("failed to append event history", err, "contentType", row.ContentType)
	}
	return nil
}

// ComputeDiff returns the changed scalar fields between two snapshots
// of the same entity type.
func ComputeDiff(old, updated any) map[string]DiffEntry {
	oldFields := FieldValues(old)
	newFields := FieldValues(updated)

	diff := map[string]DiffEntry{}
	for name, newValue := range newFields {
		if oldValue, ok := oldFields[name]; ok && oldValue != newValue {
			diff[name] = DiffEntry{Old: oldValue, New: newValue}
		}
	}
	return diff
}

// Bookkeeping fields excluded from diffs.
var diffIgnoredFields = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
	"version":   true,
}

// FieldValues flattens an entity's scalar fields to rendered strings,
// keyed by json tag. Associations and collections are skipped.
func FieldValues(entity any) map[string]string {
	out := map[string]string{}
	value := reflect.ValueOf(entity)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return out
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return out
	}
	collectFields(value, out)
	return out
}

func collectFields(value reflect.Value, out map[string]string) {
	t := value.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := value.Field(i)

		if field.Anonymous && fv.Kind() == reflect.Struct {
			collectFields(fv, out)
			continue
		}

		name := jsonFieldName(field)
		if name == "" || diffIgnoredFields[name] {
			continue
		}

		rendered, ok := renderScalar(fv)
		if !ok {
			continue
		}
		out[name] = rendered
	}
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name
}

func renderScalar(value reflect.Value) (string, bool) {
	if value.Kind() == reflect.Pointer {
		if value.IsNil() {
			// Nil association pointers are not values; only nil scalars
			// and times render as "None".
			elem := value.Type().Elem()
			if elem.Kind() == reflect.Struct && elem != reflect.TypeOf(time.Time{}) {
				return "", false
			}
			return "None", true
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.String:
		return value.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", value.Int()), true
	case reflect.Bool:
		return fmt.Sprintf("%t", value.Bool()), true
	case reflect.Struct:
		if t, ok := value.Interface().(time.Time); ok {
			return t.UTC().Format(time.RFC3339), true
		}
	}
	return "", false
}

// ContentTypeOf names an entity for the event-history target index.
func ContentTypeOf(entity any) string {
	t := reflect.TypeOf(entity)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return toSnake(t.Name())
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (name[i-1] < 'A' || name[i-1] > 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func entityID(entity any) string {
	value := reflect.ValueOf(entity)
	for value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return ""
	}
	id := value.FieldByName("ID")
	if id.IsValid() && id.Kind() == reflect.String {
		return id.String()
	}
	return ""
}
