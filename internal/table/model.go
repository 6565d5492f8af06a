package table

type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusReserved  Status = "reserved"
	StatusCleaning  Status = "cleaning"
)

type Table struct {
	ID          uint   `json:"id,omitempty"`
	TableNumber int    `json:"table_number"`
	Capacity    int    `json:"capacity"`
	Status      Status `json:"status"`

	CurrentOrderID *uint `json:"current_order_id,omitempty"`

	// MergedWith is directional: the main table of a merge group lists
	// all secondary ids; each secondary lists exactly the main id.
	MergedWith []uint `json:"merged_with,omitempty"`
	SplitFrom  *uint  `json:"split_from,omitempty"`
}

func (t *Table) EntityID() uint { return t.ID }

func (t *Table) Clone() *Table {
	cp := *t
	if t.CurrentOrderID != nil {
		oid := *t.CurrentOrderID
		cp.CurrentOrderID = &oid
	}
	if t.SplitFrom != nil {
		sf := *t.SplitFrom
		cp.SplitFrom = &sf
	}
	cp.MergedWith = append([]uint(nil), t.MergedWith...)
	return &cp
}
