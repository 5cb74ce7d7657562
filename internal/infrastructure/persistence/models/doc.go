// Package models holds the GORM row types behind the repositories.
//
// Domain types carry no tags; each model converts to and from its aggregate
// with ToDomain and FromDomain. All lists every model for AutoMigrate in tests;
// production schemas come from the SQL files under migrations/.
package models
