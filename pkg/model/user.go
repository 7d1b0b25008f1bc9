package model

import (
	"encoding/json"
	"time"
)

// User is a stored user object. Managed and internal users share the
// table; the resource column tells them apart ("managed/user" versus
// "internal/user"). Everything beyond the object identity, including the
// credential, lives in the properties document.
type User struct {
	ObjectID   string    `gorm:"column:object_id;primaryKey"`
	Resource   string    `gorm:"column:resource;primaryKey"`
	Rev        int       `gorm:"column:rev;not null"`
	Properties []byte    `gorm:"column:properties;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// PropertyMap unmarshals the properties document. A user with no stored
// properties yields an empty map.
func (u *User) PropertyMap() (map[string]interface{}, error) {
	if len(u.Properties) == 0 {
		return map[string]interface{}{}, nil
	}
	var props map[string]interface{}
	if err := json.Unmarshal(u.Properties, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// SetProperties replaces the properties document.
func (u *User) SetProperties(props map[string]interface{}) error {
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	u.Properties = raw
	return nil
}
