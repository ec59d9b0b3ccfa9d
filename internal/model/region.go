package model

// DefaultRegionLabel is shown when the backend has not reported a region.
const DefaultRegionLabel = "eu-central-1"

// Region is the backend's region label, fetched once at startup.
type Region struct {
	Region string `json:"region"`
}

// Label returns the region name or the default label when unset.
func (r Region) Label() string {
	if r.Region == "" {
		return DefaultRegionLabel
	}
	return r.Region
}
