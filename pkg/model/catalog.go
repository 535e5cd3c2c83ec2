package model

import "time"

// PriceOption is one entry of a service's pricing list. The first entry is
// the headline price snapshotted onto appointments.
type PriceOption struct {
	Label  string  `json:"label" bson:"label" validate:"required,min=1,max=50"`
	Amount float64 `json:"amount" bson:"amount" validate:"min=0"`
}

type Service struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string        `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Category    string        `json:"category" bson:"category" validate:"required,min=2,max=50"`
	Description string        `json:"description,omitempty" bson:"description,omitempty" validate:"max=1000"`
	Duration    int           `json:"duration" bson:"duration" validate:"required,min=5,max=480"`
	Pricing     []PriceOption `json:"pricing" bson:"pricing" validate:"required,min=1,dive"`
	Active      bool          `json:"active" bson:"active"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
}

// HeadlinePrice returns the first pricing entry's amount, the single number
// used when an appointment needs one price.
func (s *Service) HeadlinePrice() float64 {
	if len(s.Pricing) == 0 {
		return 0
	}
	return s.Pricing[0].Amount
}

type Package struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name          string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty" validate:"max=1000"`
	ServiceIDs    []string  `json:"service_ids" bson:"service_ids" validate:"omitempty,dive,mongodb"`
	TotalDuration int       `json:"total_duration" bson:"total_duration" validate:"required,min=5,max=960"`
	Price         float64   `json:"price" bson:"price" validate:"min=0"`
	Active        bool      `json:"active" bson:"active"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// ResolvedSubject is what catalog lookup hands the booking engine: the
// subject reference plus the duration and price to snapshot.
type ResolvedSubject struct {
	Kind        SubjectKind
	RefID       string
	DisplayName string
	Duration    int
	Price       float64
}

func (r ResolvedSubject) Subject() Subject {
	return Subject{Kind: r.Kind, RefID: r.RefID, DisplayName: r.DisplayName}
}
