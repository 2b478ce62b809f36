// Package models contains GORM persistence models for the sync tables.
// Domain entities stay free of ORM tags; each model converts to and from its
// entity with ToDomain and a FromDomain constructor.
package models
