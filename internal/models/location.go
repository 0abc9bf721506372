// internal/models/location.go
package models

import "fmt"

// ProductLocation says which representation currently holds a product:
// either the embedded list of BranchID, or an independent separated record.
// The zero value is an unknown location.
type ProductLocation struct {
	kind     locationKind
	BranchID string
}

type locationKind uint8

const (
	locationUnknown locationKind = iota
	locationEmbedded
	locationSeparated
)

func EmbeddedIn(branchID string) ProductLocation {
	return ProductLocation{kind: locationEmbedded, BranchID: branchID}
}

func Separated(branchID string) ProductLocation {
	return ProductLocation{kind: locationSeparated, BranchID: branchID}
}

func (l ProductLocation) IsEmbedded() bool { return l.kind == locationEmbedded }
func (l ProductLocation) IsSeparated() bool { return l.kind == locationSeparated }
func (l ProductLocation) Known() bool { return l.kind != locationUnknown }

// Strategy maps the location to the storage strategy tag that produced it.
func (l ProductLocation) Strategy() StorageStrategy {
	if l.kind == locationSeparated {
		return StrategySeparated
	}
	return StrategyEmbedded
}

func (l ProductLocation) String() string {
	switch l.kind {
	case locationEmbedded:
		return fmt.Sprintf("embedded(%s)", l.BranchID)
	case locationSeparated:
		return "separated"
	default:
		return "unknown"
	}
}
