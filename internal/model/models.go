package model

// LineMeta is the metadata decoded from a survey line identifier.
type LineMeta struct {
	SensorID string
	Filename string
	TestID   string
	AMPM     string // "AM" or "PM" by convention; taken verbatim from the line name
	Date     string // MM/DD
}

// Sample is one measurement on a survey line. Response holds the value of the
// configured response channel.
type Sample struct {
	Line     string
	X        float64
	Y        float64
	Response float64
	Meta     LineMeta
}

// Track is the acquisition-ordered sequence of samples sharing one line name.
type Track struct {
	Line    string
	Samples []Sample
}

// Pass is one half of a track. Samples aliases the parent track's storage and
// must be treated as read-only.
type Pass struct {
	Label   PassLabel
	Samples []Sample
}

// SeedItem is a calibration target placed at a surveyed position.
type SeedItem struct {
	TestItemID string
	TrueX      float64
	TrueY      float64
	Placement  Placement
}

// DynamicResponseRecord is one reconciled peak measurement for a (pass, seed) pair.
type DynamicResponseRecord struct {
	Filename   string // <line>_<fwd|bck>
	Pass       PassLabel
	Date       string
	AMPM       string
	SensorID   string
	TestItemID string
	TestID     string
	Response   float64
	X          float64
	Y          float64
	Offset     float64 // Euclidean distance from the seed's true position
	Channel    string
}

// SeedTestItem joins an accepted record with the seed it measured.
type SeedTestItem struct {
	TestItemID  string
	SensorID    string
	Date        string
	Offset      float64
	TrueX       float64
	TrueY       float64
	Placement   Placement
	Orientation float64
	Inclination float64
}

// StandardValue is the mean online response of one seed for one sensor.
type StandardValue struct {
	SensorID     string
	TestItemID   string
	MeanResponse float64
	MeanOffset   float64
	Count        int
}
