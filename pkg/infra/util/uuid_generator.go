package util

import "github.com/google/uuid"

const orderIDPrefix = "ORD-"

// UUIDGenerator issues order ids of the form ORD-<uuid v4>.
type UUIDGenerator struct{}

func (g *UUIDGenerator) GenerateID() string {
	return orderIDPrefix + uuid.NewString()
}
