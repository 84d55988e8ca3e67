package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"appointment-scheduler/core/entity"

	"github.com/google/uuid"
)

type Notification struct {
	UserID  uuid.UUID `db:"user_id"`
	Title   string    `db:"title"`
	Message string    `db:"message"`
	Type    string    `db:"type"`
	Data    JSONMap   `db:"data"`
	IsRead  bool      `db:"is_read"`
	entity.BaseEntity
}

// JSONMap is a JSONB object column. NULL scans to an empty map.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("notification data: unsupported type %T", value)
	}
	return json.Unmarshal(raw, m)
}

type PaginatedNotificationEntity = entity.Pagination[Notification]
