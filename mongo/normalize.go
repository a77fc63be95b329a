// ABOUTME: Converts BSON documents into the engine's record shapes
// ABOUTME: Dates stay lazy, object ids become hex strings and _id becomes id
package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harperreed/fichas/models"
)

// DocumentToRecord converts a top-level document, renaming _id to id
// unless the document already has an id field.
func DocumentToRecord(doc bson.D) models.Record {
	hasID := false
	for _, e := range doc {
		if e.Key == models.EntryFieldID {
			hasID = true
			break
		}
	}

	fields := make([]models.Field, 0, len(doc))
	for _, e := range doc {
		key := e.Key
		if key == "_id" && !hasID {
			key = models.EntryFieldID
		}
		fields = append(fields, models.Field{Key: key, Value: Normalize(e.Value)})
	}
	return models.NewRecord(fields...)
}

// Normalize converts one BSON value. Nested documents keep their order.
func Normalize(v any) any {
	switch x := v.(type) {
	case bson.D:
		fields := make([]models.Field, len(x))
		for i, e := range x {
			fields[i] = models.Field{Key: e.Key, Value: Normalize(e.Value)}
		}
		return models.NewRecord(fields...)
	case bson.M:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = Normalize(val)
		}
		return m
	case bson.A:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = Normalize(val)
		}
		return out
	case primitive.ObjectID:
		return x.Hex()
	case primitive.Timestamp:
		return models.Timestamp{Seconds: int64(x.T)}
	case primitive.Decimal128:
		return x.String()
	case primitive.Symbol:
		return string(x)
	case primitive.Regex:
		return x.String()
	case primitive.JavaScript:
		return string(x)
	case primitive.Null, primitive.Undefined:
		return nil
	default:
		// primitive.DateTime satisfies models.LazyTime and is left as is.
		return v
	}
}

// Portable replaces lazy BSON dates with serializable timestamps so the
// record survives a JSON round trip.
func Portable(rec models.Record) models.Record {
	fields := rec.Fields()
	for i, f := range fields {
		fields[i].Value = portableValue(f.Value)
	}
	return models.NewRecord(fields...)
}

func portableValue(v any) any {
	switch x := v.(type) {
	case primitive.DateTime:
		return models.TimestampOf(x.Time())
	case models.Record:
		return Portable(x)
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = portableValue(val)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = portableValue(val)
		}
		return out
	default:
		return v
	}
}
