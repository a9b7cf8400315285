package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Locality is one city/place entry of the locality directory: a searchable
// reference of US places with their state and ZIP ranges, used by the admin
// tooling to audit parsed city/state pairs. The offline pipeline never needs
// it.
type Locality struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	LocalityID     string             `bson:"locality_id" json:"locality_id"`
	Name           string             `bson:"name" json:"name"`
	NormalizedName string             `bson:"normalized_name" json:"normalized_name"`
	StateCode      string             `bson:"state_code" json:"state_code"`
	County         string             `bson:"county,omitempty" json:"county,omitempty"`
	ZipCodes       []string           `bson:"zip_codes,omitempty" json:"zip_codes,omitempty"`
	Aliases        []string           `bson:"aliases,omitempty" json:"aliases,omitempty"`
	TableRevision  string             `bson:"table_revision" json:"table_revision"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasZip reports whether the locality is known to serve the given ZIP5.
func (l *Locality) HasZip(zip5 string) bool {
	for _, z := range l.ZipCodes {
		if z == zip5 {
			return true
		}
	}
	return false
}
