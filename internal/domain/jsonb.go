package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONBMap maps a PostgreSQL JSONB column onto map[string]any.
// Used for the structured parse payload stored on proof submissions.
type JSONBMap map[string]any

// Scan implements sql.Scanner.
func (j *JSONBMap) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.New("unsupported type for JSONBMap")
	}

	if len(data) == 0 {
		*j = JSONBMap{}
		return nil
	}

	return json.Unmarshal(data, j)
}

// Value implements driver.Valuer.
func (j JSONBMap) Value() (driver.Value, error) {
	if len(j) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(j))
}
