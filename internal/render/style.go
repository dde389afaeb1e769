package render

// Feature property names written by the mapper and read by the page script.
const (
	StyleProperty = "style"
	HoverProperty = "hover_info"
)

// Fixed stroke and opacity shared by every region.
const (
	StrokeColor  = "#555555"
	StrokeWeight = 0.5
	FillOpacity  = 0.75
)

// Style is the Leaflet path style of one region.
type Style struct {
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	FillOpacity float64 `json:"fillOpacity"`
}

// NewStyle returns the standard region style with the given fill.
func NewStyle(fill string) Style {
	return Style{
		FillColor:   fill,
		Color:       StrokeColor,
		Weight:      StrokeWeight,
		FillOpacity: FillOpacity,
	}
}

// Basemap is the raster tile layer drawn under the regions.
type Basemap struct {
	Name        string
	URL         string
	Attribution string
	TileSize    int
	ZoomOffset  int
}

// DefaultBasemap is CartoDB Voyager without labels, so region colours carry
// the map.
func DefaultBasemap() Basemap {
	return Basemap{
		Name:        "CartoDB.VoyagerNoLabels",
		URL:         "https://{s}.basemaps.cartocdn.com/rastertiles/voyager_nolabels/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		TileSize:    256,
	}
}

// View is the initial viewport.
type View struct {
	Bounds  [2][2]float64 // [[south, west], [north, east]]
	MinZoom int
	MaxZoom int
}

// ContiguousUS frames the lower 48 states.
var ContiguousUS = View{
	Bounds:  [2][2]float64{{23.7, -122.5}, {46.7, -68.79}},
	MinZoom: 3,
	MaxZoom: 8,
}
