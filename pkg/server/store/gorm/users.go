package gorm

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"gorm.io/gorm"

	"idm-in-go/pkg/model"
	"idm-in-go/pkg/server/store"
)

// Ensure UserStore implements store.UserStore
var _ store.UserStore = (*UserStore)(nil)

// UserStore implements store.UserStore using GORM
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Query runs a named query on a resource and returns the matching objects.
func (s *UserStore) Query(ctx context.Context, resource string, queryID string, params map[string]string) ([]map[string]interface{}, error) {
	switch queryID {
	case store.QueryCredential:
		return s.queryByProperties(ctx, resource, params)
	case store.QueryCredentialInternalUser:
		return s.queryByObjectID(ctx, resource, params)
	default:
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownQuery, queryID)
	}
}

// queryByProperties matches each parameter against the properties document.
func (s *UserStore) queryByProperties(ctx context.Context, resource string, params map[string]string) ([]map[string]interface{}, error) {
	tx := s.db.WithContext(ctx).Where("resource = ?", resource)
	for _, name := range sortedKeys(params) {
		tx = tx.Where("properties ->> ? = ?", name, params[name])
	}

	var users []model.User
	if err := tx.Find(&users).Error; err != nil {
		return nil, err
	}
	return objects(users)
}

// queryByObjectID matches the single parameter value against the object id,
// whatever the configured property name is. Internal users authenticate by
// their object id.
func (s *UserStore) queryByObjectID(ctx context.Context, resource string, params map[string]string) ([]map[string]interface{}, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("%s expects exactly one parameter, got %d", store.QueryCredentialInternalUser, len(params))
	}
	var id string
	for _, value := range params {
		id = value
	}

	var users []model.User
	tx := s.db.WithContext(ctx).Where("resource = ? AND object_id = ?", resource, id).Find(&users)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return objects(users)
}

// Read fetches a single object by id.
func (s *UserStore) Read(ctx context.Context, resource string, id string) (map[string]interface{}, error) {
	var user model.User
	tx := s.db.WithContext(ctx).Where("resource = ? AND object_id = ?", resource, id).First(&user)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, tx.Error
	}
	return object(&user)
}

// Create stores a new user object.
func (s *UserStore) Create(ctx context.Context, resource string, id string, properties map[string]interface{}) error {
	existing, err := s.Read(ctx, resource, id)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s on %s", store.ErrUserExists, id, resource)
	}

	user := model.User{ObjectID: id, Resource: resource, Rev: 1}
	if err := user.SetProperties(properties); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&user).Error
}

// UpdateProperties merges updates into an existing object's properties and
// bumps its revision.
func (s *UserStore) UpdateProperties(ctx context.Context, resource string, id string, updates map[string]interface{}) error {
	var user model.User
	tx := s.db.WithContext(ctx).Where("resource = ? AND object_id = ?", resource, id).First(&user)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: %s on %s", store.ErrUserNotFound, id, resource)
		}
		return tx.Error
	}

	props, err := user.PropertyMap()
	if err != nil {
		return fmt.Errorf("user %s: malformed properties: %w", id, err)
	}
	for name, value := range updates {
		if value == nil {
			delete(props, name)
			continue
		}
		props[name] = value
	}
	if err := user.SetProperties(props); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("resource = ? AND object_id = ?", resource, id).
		Updates(map[string]interface{}{
			"properties": user.Properties,
			"rev":        gorm.Expr("rev + 1"),
		}).Error
}

func objects(users []model.User) ([]map[string]interface{}, error) {
	out := make([]map[string]interface{}, 0, len(users))
	for i := range users {
		obj, err := object(&users[i])
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// object flattens a row into the property map shape modules consume, with
// the object identity woven back in.
func object(u *model.User) (map[string]interface{}, error) {
	props, err := u.PropertyMap()
	if err != nil {
		return nil, fmt.Errorf("user %s: malformed properties: %w", u.ObjectID, err)
	}
	props["_id"] = u.ObjectID
	props["_rev"] = strconv.Itoa(u.Rev)
	return props, nil
}

func sortedKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
