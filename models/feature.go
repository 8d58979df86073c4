package models

// Feature is a highlight card on the landing page. Features have no image.
type Feature struct {
	Base    `bson:",inline"`
	Title   string `json:"title" bson:"title" gorm:"type:text;not null"`
	Desc    string `json:"desc" bson:"desc" gorm:"type:text;not null"`
	IconKey string `json:"iconKey,omitempty" bson:"iconKey,omitempty" gorm:"type:text"`
	Color   string `json:"color,omitempty" bson:"color,omitempty" gorm:"type:varchar(9)"`
}

var FeatureSchema = Schema[*Feature]{
	Name:       "feature",
	Collection: "features",
	New:        func() *Feature { return &Feature{} },
	Fields: []Field[*Feature]{
		Text("title", true, 0, func(f *Feature, v string) { f.Title = v }),
		Text("desc", true, 0, func(f *Feature, v string) { f.Desc = v }),
		Text("iconKey", false, 0, func(f *Feature, v string) { f.IconKey = v }),
		Color("color", func(f *Feature, v string) { f.Color = v }),
	},
}

// DefaultFeatures is the landing page starter set loaded by the seed-features command.
func DefaultFeatures() []*Feature {
	return []*Feature{
		{Title: "Full-Stack Development", Desc: "Building robust backend APIs, dynamic frontend apps, and database integrations for complete web solutions.", IconKey: "code", Color: "#1abc9c"},
		{Title: "Mobile App Development", Desc: "Creating responsive and performant cross-platform mobile applications using modern frameworks.", IconKey: "smartphone", Color: "#3498db"},
		{Title: "UI/UX Design", Desc: "Designing user-centric interfaces with modern tools for seamless user experiences.", IconKey: "palette", Color: "#e67e22"},
		{Title: "API Integration", Desc: "Seamless integration of third-party APIs for enhanced functionality and automation.", IconKey: "api", Color: "#9b59b6"},
		{Title: "Cloud Deployment", Desc: "Deploying scalable applications on cloud platforms with CI/CD pipelines for faster delivery.", IconKey: "cloud", Color: "#f1c40f"},
		{Title: "Database Management", Desc: "Efficient design, optimization, and management of relational and NoSQL databases.", IconKey: "database", Color: "#e74c3c"},
		{Title: "Performance Optimization", Desc: "Improving app speed, SEO, and overall performance for a better user experience.", IconKey: "speedometer", Color: "#2ecc71"},
		{Title: "Security", Desc: "Implementing authentication, authorization, and encryption for secure applications.", IconKey: "shield", Color: "#34495e"},
	}
}
