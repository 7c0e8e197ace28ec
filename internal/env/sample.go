package env

// Sample represents a single environmental measurement (BMP280).
type Sample struct {
	Source string `json:"source"`
	Time   string `json:"time"` // RFC3339Nano

	Temperature  float64 `json:"temp_c"`        // °C
	Pressure     float64 `json:"pressure_pa"`   // Pa
	PressureMbar float64 `json:"pressure_mbar"` // mbar
	PressureHPa  float64 `json:"pressure_hpa"`  // hPa, same as mbar
}
