package models

import "gorm.io/datatypes"

// FAQ is one question/answer pair on a service detail page.
type FAQ struct {
	Q string `json:"q" bson:"q"`
	A string `json:"a" bson:"a"`
}

// Service is an offering listed on the services page, with its detail tabs
type Service struct {
	Base        `bson:",inline"`
	Title       string                      `json:"title" bson:"title" gorm:"type:text;not null"`
	Description string                      `json:"description" bson:"description" gorm:"type:text;not null"`
	IconKey     string                      `json:"iconKey,omitempty" bson:"iconKey,omitempty" gorm:"type:text"`
	Details     string                      `json:"details,omitempty" bson:"details,omitempty" gorm:"type:text"`
	Image       string                      `json:"image,omitempty" bson:"image,omitempty" gorm:"type:text"`
	Features    datatypes.JSONSlice[string] `json:"features" bson:"features"`
	Included    datatypes.JSONSlice[string] `json:"included" bson:"included"`
	FAQs        datatypes.JSONSlice[FAQ]    `json:"faqs" bson:"faqs" gorm:"column:faqs"`
}

func (s *Service) GetImage() string { return s.Image }
func (s *Service) SetImage(url string) { s.Image = url }

var ServiceSchema = Schema[*Service]{
	Name:       "service",
	Collection: "services",
	New: func() *Service {
		return &Service{
			Features: datatypes.JSONSlice[string]{},
			Included: datatypes.JSONSlice[string]{},
			FAQs:     datatypes.JSONSlice[FAQ]{},
		}
	},
	Fields: []Field[*Service]{
		Text("title", true, 0, func(s *Service, v string) { s.Title = v }),
		Text("description", true, 0, func(s *Service, v string) { s.Description = v }),
		Text("iconKey", false, 0, func(s *Service, v string) { s.IconKey = v }),
		Text("details", false, 0, func(s *Service, v string) { s.Details = v }),
		List("features", func(s *Service, v []string) { s.Features = v }),
		List("included", func(s *Service, v []string) { s.Included = v }),
		JSON("faqs", func(s *Service, v []FAQ) {
			if v == nil {
				v = []FAQ{}
			}
			s.FAQs = v
		}),
	},
}
