package protocol

// GENERATE (client -> server)
type GenerateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Density         int    `json:"density"`
	Template        string `json:"template"`
	Seed            uint64 `json:"seed"`
	Polygons        bool   `json:"polygons,omitempty"`
}

// Point is an [x, y] map coordinate.
type Point [2]float64

// MAP (server -> client). Per-cell arrays are run-length encoded.
type MapMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id"`

	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Density  int    `json:"density"`
	Template string `json:"template"`
	Seed     uint64 `json:"seed"`
	Digest   string `json:"digest"`
	Cells    int    `json:"cells"`

	HeightsRLE  string `json:"heights_rle"`
	FeaturesRLE string `json:"features_rle"`
	CoastRLE    string `json:"coast_rle"`

	Features    []FeatureInfo    `json:"features"`
	Coastlines  []CoastlineInfo  `json:"coastlines"`
	Contours    []ContourInfo    `json:"contours"`
	Polygons    [][]Point        `json:"polygons,omitempty"`
	Diagnostics []DiagnosticInfo `json:"diagnostics"`
}

type FeatureInfo struct {
	ID     int    `json:"id"`
	Type   string `json:"type"`
	Group  string `json:"group"`
	Land   bool   `json:"land"`
	Border bool   `json:"border"`
	Cells  int    `json:"cells"`
}

type CoastlineInfo struct {
	FeatureID int     `json:"feature_id"`
	Type      string  `json:"type"`
	Group     string  `json:"group"`
	Points    []Point `json:"points"`
}

type ContourInfo struct {
	Height int     `json:"height"`
	Points []Point `json:"points"`
}

type DiagnosticInfo struct {
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Detail  string `json:"detail"`
	Feature int    `json:"feature"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
