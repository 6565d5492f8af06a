package menu

type Item struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	Price        float64 `json:"price"`
	Available    bool    `json:"available"`
	IncludeInGST bool    `json:"include_in_gst"`
}

func (i *Item) EntityID() uint { return i.ID }

func (i *Item) Clone() *Item {
	cp := *i
	return &cp
}
