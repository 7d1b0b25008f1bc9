// Package model defines the database models for the IDM repository.
//
// This package contains GORM models that map to the PostgreSQL schema
// created by the migrations under db/migrations.
//
// # Core Models
//
//   - User: managed and internal user objects with a JSON properties
//     document holding the profile and credential
//
// Audit events are written by pkg/audit through database/sql directly and
// have no model here.
package model
