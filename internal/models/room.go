package models

// Room is a bookable physical room.
type Room struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Building string `db:"building" json:"building"`
	Capacity int    `db:"capacity" json:"capacity"`
}

// FeatureTag is an admin-managed equipment/amenity category.
type FeatureTag struct {
	ID          int64  `db:"id" json:"id"`
	TagName     string `db:"tag_name" json:"tag_name"`
	TagCategory string `db:"tag_category" json:"tag_category"`
}

// RoomFeature associates a room with a feature tag and a quantity.
type RoomFeature struct {
	RoomID       int64  `db:"room_id" json:"room_id"`
	FeatureTagID int64  `db:"feature_tag_id" json:"feature_tag_id"`
	Quantity     int    `db:"quantity" json:"quantity"`
	TagName      string `db:"tag_name" json:"tag_name"`
	TagCategory  string `db:"tag_category" json:"tag_category"`
}

// CourseRequirement is a course's equipment need. Mandatory failures
// disqualify a room outright; optional failures only reduce the score.
type CourseRequirement struct {
	CourseID     int64  `db:"course_id" json:"course_id"`
	FeatureTagID int64  `db:"feature_tag_id" json:"feature_tag_id"`
	IsMandatory  bool   `db:"is_mandatory" json:"is_mandatory"`
	MinQuantity  int    `db:"min_quantity" json:"min_quantity"`
	TagName      string `db:"tag_name" json:"tag_name"`
}
