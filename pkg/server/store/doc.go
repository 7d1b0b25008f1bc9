// Package store provides storage abstractions for the IDM server.
//
// This package defines interfaces for database operations, allowing the
// authentication modules and server endpoints to be decoupled from the
// specific database implementation. This enables easier testing with mocks
// and potential support for different storage backends.
//
// # Available Stores
//
//   - UserStore: user object lookup for authentication plus the create and
//     update operations the CLI uses
//
// # Usage
//
//	users := gorm.NewUserStore(db)
//	object, err := users.Read(ctx, "managed/user", id)
//	if err != nil {
//	    // storage fault
//	}
//	if object == nil {
//	    // no such user
//	}
package store
