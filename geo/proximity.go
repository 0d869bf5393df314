package geo

// Hub is a fixed reference coordinate used as the origin for proximity and
// drive-time calculations.
type Hub struct {
	ID   string  `yaml:"id"`
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

// HubDistance is the computed proximity of a point to one hub.
type HubDistance struct {
	HubID           string
	DistanceMiles   *float64
	DriveTimeMin    *float64
	WithinThreshold bool
}

// ProximityFor computes distance and drive time from a point to each hub and
// flags hubs reachable within thresholdMin minutes. A missing coordinate is
// fail-safe: nil distances and false flags, never counted as in range.
func ProximityFor(lat, lon *float64, hubs []Hub, thresholdMin float64) []HubDistance {
	out := make([]HubDistance, len(hubs))
	for i, hub := range hubs {
		out[i] = HubDistance{HubID: hub.ID}
		if lat == nil || lon == nil {
			continue
		}
		d := HaversineMiles(*lat, *lon, hub.Lat, hub.Lon)
		t := EstimateDriveTimeMinutes(d)
		out[i].DistanceMiles = &d
		out[i].DriveTimeMin = &t
		out[i].WithinThreshold = t <= thresholdMin
	}
	return out
}
