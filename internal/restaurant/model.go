package restaurant

// Settings is the per-tenant configuration owned by the restaurant admin
// screens on the server. Read-only to this engine.
type Settings struct {
	ID                        uint    `json:"id"`
	Name                      string  `json:"name"`
	DefaultSGSTRate           float64 `json:"default_sgst_rate"`
	DefaultCGSTRate           float64 `json:"default_cgst_rate"`
	EnableOrderStatusTracking bool    `json:"enable_order_status_tracking"`
}
