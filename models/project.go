package models

// Project represents a portfolio project shown on the projects page
type Project struct {
	Base      `bson:",inline"`
	Name      string `json:"name" bson:"name" gorm:"type:varchar(100);not null"`
	ShortDesc string `json:"shortDesc" bson:"shortDesc" gorm:"type:varchar(200);not null"`
	LongDesc  string `json:"longDesc" bson:"longDesc" gorm:"type:text;not null"`
	Link      string `json:"link" bson:"link" gorm:"type:text;not null"`
	Image     string `json:"image,omitempty" bson:"image,omitempty" gorm:"type:text"`
}

func (p *Project) GetImage() string { return p.Image }
func (p *Project) SetImage(url string) { p.Image = url }

var ProjectSchema = Schema[*Project]{
	Name:       "project",
	Collection: "projects",
	New:        func() *Project { return &Project{} },
	Fields: []Field[*Project]{
		Text("name", true, 100, func(p *Project, v string) { p.Name = v }),
		Text("shortDesc", true, 200, func(p *Project, v string) { p.ShortDesc = v }),
		Text("longDesc", true, 0, func(p *Project, v string) { p.LongDesc = v }),
		Link("link", true, func(p *Project, v string) { p.Link = v }),
	},
	ImageRequired: true,
}
