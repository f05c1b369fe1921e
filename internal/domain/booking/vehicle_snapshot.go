package booking

// VehicleSnapshot is an immutable value object capturing the rented vehicle
// at booking time. Only the fields relevant to guarantee math are kept; the
// vehicle catalog itself lives in another service.
type VehicleSnapshot struct {
	VehicleID        string  `json:"vehicle_id"`
	Title            string  `json:"title"`
	ValueUsd         float64 `json:"value_usd"`
	NightlyRateCents int64   `json:"nightly_rate_cents"`
	PlateCountry     string  `json:"plate_country"`
}

// NightlyRateUsd returns the nightly rate in float USD.
func (v VehicleSnapshot) NightlyRateUsd() float64 {
	return float64(v.NightlyRateCents) / 100
}
