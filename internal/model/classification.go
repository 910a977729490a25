// Package model defines the core domain models used throughout the application.
package model

// TypeSource records which classifier decided a record's type.
type TypeSource string

// Type source constants.
const (
	TypeSourceNone    TypeSource = ""
	TypeSourceModel   TypeSource = "model"
	TypeSourceKeyword TypeSource = "keyword"
)

// Message type categories produced by the keyword classifier.
const (
	TypeBill = "bill"
	TypeCard = "card"
)
