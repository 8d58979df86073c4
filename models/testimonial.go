package models

const (
	SizeSmall = "small"
	SizeLarge = "large"
)

// Testimonial is a client quote rendered in the testimonials carousel
type Testimonial struct {
	Base  `bson:",inline"`
	Name  string  `json:"name" bson:"name" gorm:"type:text;not null"`
	Role  string  `json:"role" bson:"role" gorm:"type:text;not null"`
	Text  string  `json:"text" bson:"text" gorm:"type:text;not null"`
	Stars float64 `json:"stars" bson:"stars" gorm:"not null;default:5"`
	Size  string  `json:"size" bson:"size" gorm:"type:varchar(10);not null;default:small"`
	Image string  `json:"image,omitempty" bson:"image,omitempty" gorm:"type:text"`
}

func (t *Testimonial) GetImage() string { return t.Image }
func (t *Testimonial) SetImage(url string) { t.Image = url }

var TestimonialSchema = Schema[*Testimonial]{
	Name:       "testimonial",
	Collection: "testimonials",
	New:        func() *Testimonial { return &Testimonial{Stars: 5, Size: SizeSmall} },
	Fields: []Field[*Testimonial]{
		Text("name", true, 0, func(t *Testimonial, v string) { t.Name = v }),
		Text("role", true, 0, func(t *Testimonial, v string) { t.Role = v }),
		Text("text", true, 0, func(t *Testimonial, v string) { t.Text = v }),
		NumberRange("stars", 0, 5, func(t *Testimonial, n float64) { t.Stars = n }),
		Enum("size", []string{SizeSmall, SizeLarge}, func(t *Testimonial, v string) { t.Size = v }),
	},
}
