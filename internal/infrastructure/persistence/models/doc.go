// Package models contains the GORM persistence models. They mirror the
// domain entities one-to-one and convert through ToDomain/FromDomain; domain
// code never sees a model type.
package models
